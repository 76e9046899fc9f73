package saltbox

// Command descriptions
const (
	MsgRootShort = "Install, render and run salt recipes in a local prefix"
	MsgRootLong  = `saltbox manages a single installation prefix for masterless salt.

Recipe packages are registered with 'install'. Every command that touches the
prefix first renders each registered template root and merges it, in
registration order, into the prefix under a file lock. 'exec' then runs a salt
tool against the merged configuration and exits with the tool's exit code.`

	MsgInstallShort = "Register a recipe package"
	MsgInstallLong  = `Register a recipe package directory as a template root.

Without --editable, and when install.cache is enabled, the package is copied into
the install cache and the cached copy is registered. --editable always registers
the directory in place. The first install into an empty prefix also registers
the bundled base configuration.`
	MsgInstallExample = `  # Register a package in place
  saltbox install --editable ./recipes/webserver

  # Re-copy a cached package
  saltbox install --refresh-cache ./recipes/webserver`

	MsgExecShort = "Refresh the prefix and run a salt command"
	MsgExecLong  = `Render and merge every registered root, optionally start the salt master
and/or minion daemons, then run the salt tool given after '--'.

The process exits with the tool's exit code. Daemons started here are stopped
before returning; with --block they are waited on first.`
	MsgExecExample = `  saltbox exec -- salt-call --local state.apply
  saltbox exec --master --minion -- salt '*' test.ping`

	MsgRefreshShort = "Render and merge every registered root into the prefix"
	MsgListShort    = "List registered template roots"
	MsgWatchShort   = "Refresh the prefix whenever a registered root changes"

	MsgBoxShort     = "Work with recipe boxes"
	MsgBoxListShort = "List discovered boxes and their formulas"
	MsgBoxShowShort = "Describe a box and its formulas"
	MsgBoxExecShort = "Run a box formula in a throwaway prefix"
	MsgBoxExecLong  = `Install the box into a temporary prefix, run the formula with the given
arguments as pillar data and remove the prefix afterwards. BOX is a directory
or the name of a box found in the search paths.`

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
)

// Flag descriptions
const (
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagLogLevel     = "Explicit log level (trace, debug, info, warn, error); overrides -v"
	MsgFlagPrefix       = "Installation prefix (default $SALTBOX_PATHS_PREFIX or the XDG data dir)"
	MsgFlagEditable     = "Register the directory in place instead of the cached copy"
	MsgFlagRefreshCache = "Replace an existing cached copy of the package"
	MsgFlagMaster       = "Start the salt master before running the command"
	MsgFlagMinion       = "Start the salt minion before running the command"
	MsgFlagBlock        = "Wait for started daemons to exit before returning"
	MsgFlagBoxPath      = "Directory to search for boxes (repeatable, default boxes.search)"
)

// Output messages
const (
	MsgInstalled      = "Installed %s"
	MsgRefreshed      = "Merged %d template root(s) into %s"
	MsgNoRoots        = "No template roots registered."
	MsgNoBoxes        = "No boxes found."
	MsgNoSeparator    = "exec needs '--' before the salt command"
	MsgNoCommand      = "exec needs a salt command after '--'"
	MsgArgsBeforeDash = "unexpected arguments before '--': %v"
	MsgVersionFormat  = "saltbox version %s\n  commit: %s\n  built:  %s\n"
	MsgFormulas       = "Formulas"
)
