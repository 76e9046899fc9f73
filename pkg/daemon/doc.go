// Package daemon supervises the salt master and minion daemons.
//
// A Daemon tracks its own lifecycle as Stopped, Starting, Running and
// Stopping. Start spawns "<bin>/salt-<kind> ... --daemon" and only checks that
// spawn's exit code; the daemon's own health is not checked. Stop signals the
// pid recorded in the run directory and does not wait for the process to go
// away. Wait polls the pid until the process is gone; the caller's context is
// its only bound.
package daemon
