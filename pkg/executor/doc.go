// Package executor dispatches commands to the salt executables installed
// under the prefix.
//
// Every dispatched command is pointed at the rendered configuration
// directory and the configured salt log level:
//
//	<bin>/<tool> --config-dir <prefix>/etc/salt --log-level <level> <args...>
//
// Execute inherits the standard streams and returns the child's exit code
// untouched; a nonzero exit is not an error. Run captures the output instead.
// Errors are returned only when the command could not be built or started.
//
// Process creation goes through the Runner interface so tests can substitute
// a fake.
package executor
