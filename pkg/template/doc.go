// Package template materializes template roots.
//
// A template root is copied into a private scratch directory and every
// regular text file in the copy is rendered in place with Go's text/template
// using saltbox's own markers, so recipe content that legitimately contains
// "{{ }}" is left alone:
//
//	{{$ NAME $}}          variable (or any pipeline: {{$ NAME | printf "%q" $}})
//	((* if .DEBUG *))     block statement (if, else, range, with, end)
//	((= note =))          comment, removed from the output
//
// Each variable is reachable both as a zero-argument function (NAME) and as
// a map field (.NAME). Rendering is best effort per file: a file that fails
// to parse or execute is logged and kept exactly as copied, and the rest of
// the tree is still rendered.
//
// The scratch tree is owned by the caller through RenderedTree and must be
// removed with Cleanup.
package template
