// Package registry persists the ordered list of template roots that saltbox
// renders into the installation prefix.
//
// The registry file is plain text, one absolute directory path per line.
// Order is significant: roots registered later overwrite files of earlier
// roots when merged. The registry is append-only.
//
// The package also provides Named, a small thread-safe name->item map used to
// look up pluggable components such as merge tools.
package registry
