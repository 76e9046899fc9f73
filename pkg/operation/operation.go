package operation

import (
	"context"
	"os"

	"github.com/arthur-debert/saltbox/pkg/cache"
	"github.com/arthur-debert/saltbox/pkg/config"
	"github.com/arthur-debert/saltbox/pkg/daemon"
	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/executor"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/arthur-debert/saltbox/pkg/merge"
	"github.com/arthur-debert/saltbox/pkg/paths"
	"github.com/arthur-debert/saltbox/pkg/registry"
	"github.com/arthur-debert/saltbox/pkg/template"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options selects the optional capabilities of an operation
type Options struct {
	// Master and Minion start the matching daemon around Exec
	Master bool
	Minion bool

	// Block waits for started daemons to exit before stopping them
	Block bool

	// Editable registers the package in place, bypassing the install cache
	Editable bool

	// RefreshCache replaces an existing cache slot instead of failing
	RefreshCache bool

	// ExecutorOptions are passed to the dispatcher
	ExecutorOptions []executor.Option
}

// Operation holds the components one saltbox invocation needs.
// Components not needed by the operation are nil.
type Operation struct {
	Config   *config.Config
	Paths    *paths.Paths
	Cache    *cache.Cache
	Registry *registry.Writer
	Renderer *merge.Pipeline
	Executor *executor.Executor
	Master   *daemon.Daemon
	Minion   *daemon.Daemon
	Block    bool

	logger zerolog.Logger
}

func newOperation(cfg *config.Config) (*Operation, error) {
	p, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}
	return &Operation{
		Config:   cfg,
		Paths:    p,
		Registry: registry.NewWriter(afero.NewOsFs(), p.RegistryPath()),
		logger:   logging.GetLogger("operation"),
	}, nil
}

// NewPipeline builds the render and merge pipeline for cfg. The sync tool is
// resolved here, so a missing rsync fails immediately.
func NewPipeline(cfg *config.Config) (*merge.Pipeline, error) {
	syncer, err := merge.NewSyncer(cfg.Merge.Tool)
	if err != nil {
		return nil, err
	}

	vars := template.Variables{}
	for k, v := range cfg.Template.Vars {
		vars[k] = v
	}

	return merge.NewPipeline(template.NewRenderer(), merge.NewMerger(syncer, cfg.Merge.LockFile), vars), nil
}

// NewInstaller builds an operation that registers packages
func NewInstaller(cfg *config.Config, opts Options) (*Operation, error) {
	op, err := newOperation(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Install.Cache && !opts.Editable {
		c, err := cache.New(op.Paths.CacheRoot(), cache.WithOverwrite(opts.RefreshCache))
		if err != nil {
			return nil, err
		}
		op.Cache = c
	}
	return op, nil
}

// NewRefresher builds an operation that renders and merges every registered root.
// Daemons are not supported on refresh.
func NewRefresher(cfg *config.Config, opts Options) (*Operation, error) {
	if opts.Master || opts.Minion {
		return nil, errors.New(errors.ErrNotImplemented, "refresh does not manage daemons")
	}

	op, err := newOperation(cfg)
	if err != nil {
		return nil, err
	}
	if op.Renderer, err = NewPipeline(cfg); err != nil {
		return nil, err
	}
	return op, nil
}

// NewExecutor builds an operation that refreshes and dispatches a salt command
func NewExecutor(cfg *config.Config, opts Options) (*Operation, error) {
	op, err := newOperation(cfg)
	if err != nil {
		return nil, err
	}
	if op.Renderer, err = NewPipeline(cfg); err != nil {
		return nil, err
	}

	op.Executor = executor.New(op.Paths.BinPrefix(), op.Paths.ConfigDir(), cfg.Salt.LogLevel, opts.ExecutorOptions...)

	poll := daemon.WithPollInterval(cfg.Daemon.Poll)
	if opts.Master {
		op.Master = daemon.New(daemon.Master, op.Executor, op.Paths.RunDir(), poll)
	}
	if opts.Minion {
		op.Minion = daemon.New(daemon.Minion, op.Executor, op.Paths.RunDir(), poll)
	}
	op.Block = opts.Block
	return op, nil
}

// Roots returns the registered template roots
func (o *Operation) Roots() ([]string, error) {
	reg, err := o.Registry.Load()
	if err != nil {
		return nil, err
	}
	return reg.Roots(), nil
}

// AddPackage registers a package directory and returns the path that was
// recorded (the cache slot when caching). The bundled base template is
// registered first when no salt configuration exists yet. On failure the
// registry file is left untouched.
func (o *Operation) AddPackage(path string) (string, error) {
	done := logging.LogOperationStart(o.logger, "add package")
	defer done()

	source, err := paths.NormalizePath(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidRoot, "invalid package %q", path)
	}
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidRoot, "package %s is not a directory", source).
			WithDetail("path", source)
	}

	recorded := source
	err = o.Registry.Update(func(reg *registry.Registry) error {
		if _, err := os.Stat(o.Paths.ConfigDir()); os.IsNotExist(err) {
			base := o.Paths.BaseTemplatePath()
			if err := MaterializeBase(base); err != nil {
				return err
			}
			o.logger.Info().Str("base", base).Msg("No salt config yet, registering base template")
			if err := reg.Append(base); err != nil {
				return err
			}
		}

		if o.Cache != nil {
			slot, err := o.Cache.Add(source)
			if err != nil {
				return err
			}
			recorded = slot
		}

		return reg.Append(recorded)
	})
	if err != nil {
		return "", err
	}

	o.logger.Info().Str("package", source).Str("registered", recorded).Msg("Package installed")
	return recorded, nil
}

// Refresh renders and merges every registered root into the prefix
func (o *Operation) Refresh(ctx context.Context) error {
	if o.Renderer == nil {
		return errors.New(errors.ErrInternal, "operation has no renderer")
	}

	roots, err := o.Roots()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		o.logger.Warn().Str("registry", o.Registry.Path()).Msg("No template roots registered")
	}
	return o.Renderer.MergeAll(ctx, roots, o.Paths.Prefix())
}

// Exec refreshes, starts the requested daemons, dispatches args and returns
// the tool's exit code. Started daemons are always stopped on return.
func (o *Operation) Exec(ctx context.Context, args []string) (code int, err error) {
	if o.Executor == nil {
		return -1, errors.New(errors.ErrInternal, "operation has no executor")
	}
	if len(args) == 0 {
		return -1, errors.New(errors.ErrUsage, "a salt command is required")
	}

	if err := o.Refresh(ctx); err != nil {
		return -1, err
	}

	daemons := o.daemons()
	defer func() {
		for _, d := range daemons {
			if !d.Running() {
				continue
			}
			if stopErr := d.Stop(); stopErr != nil {
				o.logger.Warn().Err(stopErr).Str("daemon", string(d.Kind())).Msg("Failed to stop daemon")
				if err == nil {
					err = stopErr
				}
			}
		}
	}()

	for _, d := range daemons {
		if err := d.Start(ctx); err != nil {
			return -1, err
		}
	}

	code, err = o.Executor.Execute(ctx, args...)
	if err != nil {
		return code, err
	}

	if o.Block {
		for _, d := range daemons {
			if err := d.Wait(ctx); err != nil {
				return code, err
			}
		}
	}
	return code, nil
}

func (o *Operation) daemons() []*daemon.Daemon {
	var out []*daemon.Daemon
	if o.Master != nil {
		out = append(out, o.Master)
	}
	if o.Minion != nil {
		out = append(out, o.Minion)
	}
	return out
}
