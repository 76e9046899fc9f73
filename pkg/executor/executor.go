package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/rs/zerolog"
)

// Executor builds and runs salt command lines
type Executor struct {
	binPrefix string
	configDir string
	logLevel  string

	runner Runner
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithRunner replaces the process runner
func WithRunner(runner Runner) Option {
	return func(e *Executor) {
		e.runner = runner
	}
}

// WithStdio sets the streams inherited by Execute
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// New creates an Executor for the salt tools under binPrefix
func New(binPrefix, configDir, logLevel string, opts ...Option) *Executor {
	e := &Executor{
		binPrefix: binPrefix,
		configDir: configDir,
		logLevel:  logLevel,
		runner:    ExecRunner{},
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		logger:    logging.GetLogger("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Runner returns the process runner
func (e *Executor) Runner() Runner {
	return e.runner
}

// BinPrefix returns the directory holding the salt executables
func (e *Executor) BinPrefix() string {
	return e.binPrefix
}

// ConfigDir returns the salt configuration directory passed to every command
func (e *Executor) ConfigDir() string {
	return e.configDir
}

// LogLevel returns the salt log level passed to every command
func (e *Executor) LogLevel() string {
	return e.logLevel
}

// BuildArgs turns raw tool arguments into a full command line.
// raw[0] names the salt executable, the rest is passed through.
func (e *Executor) BuildArgs(raw []string) ([]string, error) {
	if len(raw) == 0 || raw[0] == "" {
		return nil, errors.New(errors.ErrUsage, "a salt command is required")
	}

	info, err := os.Stat(e.configDir)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrConfigNotFound, "salt config dir %s does not exist, run refresh first", e.configDir).
			WithDetail("path", e.configDir)
	}

	args := make([]string, 0, len(raw)+4)
	args = append(args,
		filepath.Join(e.binPrefix, raw[0]),
		"--config-dir", e.configDir,
		"--log-level", e.logLevel,
	)
	args = append(args, raw[1:]...)
	return args, nil
}

// Execute runs the command with the inherited streams and returns its exit code
func (e *Executor) Execute(ctx context.Context, raw ...string) (int, error) {
	args, err := e.BuildArgs(raw)
	if err != nil {
		return -1, err
	}

	code, err := e.runner.Run(ctx, Command{
		Path:   args[0],
		Args:   args[1:],
		Stdin:  e.stdin,
		Stdout: e.stdout,
		Stderr: e.stderr,
	})
	if err != nil {
		return -1, errors.Wrapf(err, errors.ErrDispatch, "cannot start %s", args[0])
	}

	e.logger.Debug().Str("command", args[0]).Int("exitCode", code).Msg("Command finished")
	return code, nil
}

// Result is the outcome of a captured run
type Result struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit code
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Run runs the command capturing its output. A nonzero exit is not an error.
func (e *Executor) Run(ctx context.Context, raw ...string) (*Result, error) {
	args, err := e.BuildArgs(raw)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	code, err := e.runner.Run(ctx, Command{
		Path:   args[0],
		Args:   args[1:],
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDispatch, "cannot start %s", args[0])
	}

	result := &Result{
		Args:     args,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: code,
	}

	if stderr.Len() > 0 {
		e.logger.Debug().Str("output", result.Stderr).Msg("Command stderr")
	}
	return result, nil
}
