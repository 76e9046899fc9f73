// Package operation composes the saltbox components into the operations the
// CLI runs: installing a recipe, refreshing the merged tree and dispatching a
// salt command.
//
// An Operation is a plain struct of optional components. The builders
// (NewInstaller, NewRefresher, NewExecutor) pick which components to
// construct from the configuration and the call site's options; a nil
// component means that capability is not part of the operation.
//
// External tools are resolved while building, so a missing rsync surfaces
// as MERGE_TOOL_MISSING before any work is done.
package operation
