// Package merge synchronizes rendered template trees into the destination
// root.
//
// A merge is additive: new and changed files are copied over, attributes are
// preserved, and nothing already in the destination is ever deleted. Every
// merge into a destination holds that destination's file lock for its whole
// duration, so concurrent saltbox processes never interleave their writes.
//
// Two sync tools are available. "rsync" shells out to rsync(1) and is the
// default; construction fails with MERGE_TOOL_MISSING when rsync is not on
// PATH. "native" is a pure Go implementation with the same semantics.
//
// Pipeline ties the template renderer and the merger together and merges
// several roots in order, so later roots win on conflicting paths.
package merge
