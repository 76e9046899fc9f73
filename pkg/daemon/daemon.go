//go:build unix

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/executor"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Kind identifies a salt daemon
type Kind string

// Daemon kinds
const (
	Master Kind = "master"
	Minion Kind = "minion"
)

// Executable returns the daemon's executable name
func (k Kind) Executable() string {
	return "salt-" + string(k)
}

// PidFileName returns the pid file name inside the run directory
func (k Kind) PidFileName() string {
	return "salt-" + string(k) + ".pid"
}

// State is a daemon lifecycle state
type State int

// Lifecycle states
const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// DefaultPollInterval is how often Wait checks the process
const DefaultPollInterval = time.Second

// StopSignal is sent by Stop
const StopSignal = unix.SIGINT

// Daemon supervises one salt daemon
type Daemon struct {
	kind     Kind
	executor *executor.Executor
	pidFile  string
	poll     time.Duration
	alive    func(pid int) (bool, error)
	signal   func(pid int, sig unix.Signal) error

	mu     sync.Mutex
	state  State
	logger zerolog.Logger
}

// Option configures a Daemon
type Option func(*Daemon)

// WithPollInterval sets how often Wait checks the process
func WithPollInterval(d time.Duration) Option {
	return func(dm *Daemon) {
		if d > 0 {
			dm.poll = d
		}
	}
}

// New creates a stopped Daemon. exec dispatches the spawn; its pid file lives in runDir.
func New(kind Kind, exec *executor.Executor, runDir string, opts ...Option) *Daemon {
	d := &Daemon{
		kind:     kind,
		executor: exec,
		pidFile:  filepath.Join(runDir, kind.PidFileName()),
		poll:     DefaultPollInterval,
		alive:    processAlive,
		signal:   sendSignal,
		state:    Stopped,
		logger:   logging.GetLogger("daemon").With().Str("kind", string(kind)).Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Kind returns the daemon kind
func (d *Daemon) Kind() Kind {
	return d.kind
}

// PidFile returns the pid file path
func (d *Daemon) PidFile() string {
	return d.pidFile
}

// State returns the current lifecycle state
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Running reports whether the daemon is in the Running state
func (d *Daemon) Running() bool {
	return d.State() == Running
}

func (d *Daemon) setState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger.Debug().Str("from", d.state.String()).Str("to", s.String()).Msg("Daemon state change")
	d.state = s
}

// Start spawns the daemon in background mode. It is a no-op when Running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.Running() {
		return nil
	}
	d.setState(Starting)

	code, err := d.executor.Execute(ctx, d.kind.Executable(), "--daemon")
	if err != nil {
		d.setState(Stopped)
		return errors.Wrapf(err, errors.ErrDaemonStart, "cannot start %s", d.kind.Executable())
	}
	if code != 0 {
		d.setState(Stopped)
		return errors.Newf(errors.ErrDaemonStart, "%s exited with code %d", d.kind.Executable(), code).
			WithDetail("exitCode", code)
	}

	d.setState(Running)
	d.logger.Info().Msg("Daemon started")
	return nil
}

// Stop signals the daemon and marks it Stopped without waiting.
// It is a no-op unless Running; a missing pid file sends nothing.
func (d *Daemon) Stop() error {
	if !d.Running() {
		return nil
	}
	d.setState(Stopping)
	defer d.setState(Stopped)

	pid, ok, err := d.PID()
	if err != nil {
		return err
	}
	if !ok {
		d.logger.Warn().Str("pidFile", d.pidFile).Msg("No pid file, nothing to signal")
		return nil
	}

	if err := d.signal(pid, StopSignal); err != nil {
		return errors.Wrapf(err, errors.ErrDaemonSignal, "cannot signal %s (pid %d)", d.kind.Executable(), pid)
	}
	d.logger.Info().Int("pid", pid).Msg("Daemon signalled")
	return nil
}

// Wait blocks until the daemon process is gone or ctx ends. It is a no-op unless Running.
func (d *Daemon) Wait(ctx context.Context) error {
	if !d.Running() {
		return nil
	}

	pid, ok, err := d.PID()
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrInternal, "%s is running but %s is missing", d.kind.Executable(), d.pidFile)
	}

	d.logger.Debug().Int("pid", pid).Dur("poll", d.poll).Msg("Waiting for daemon")

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		alive, err := d.alive(pid)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDaemonSignal, "cannot signal pid %d", pid)
		}
		if !alive {
			d.setState(Stopped)
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), errors.ErrDaemonSignal, "stopped waiting for pid %d", pid)
		case <-ticker.C:
		}
	}
}

// PID reads the pid file. A missing file yields ok=false and no error.
func (d *Daemon) PID() (int, bool, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", d.pidFile)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false, errors.Newf(errors.ErrInternal, "invalid pid in %s: %q", d.pidFile, strings.TrimSpace(string(data)))
	}
	return pid, true, nil
}
