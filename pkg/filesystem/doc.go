// Package filesystem provides the directory tree copy primitives used by
// saltbox: copying a recipe into a scratch directory, into the install cache,
// and file-by-file synchronization of rendered trees.
//
// Modes and modification times are preserved; symbolic links are recreated
// rather than followed.
package filesystem
