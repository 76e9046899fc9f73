package saltbox

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/executor"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/arthur-debert/saltbox/pkg/operation"
	"github.com/arthur-debert/saltbox/pkg/style"
	"github.com/arthur-debert/saltbox/pkg/watch"
	"github.com/spf13/cobra"
)

// signalContext ends on SIGINT or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func stdio(cmd *cobra.Command) executor.Option {
	return executor.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func newInstallCmd(g *globalOptions) *cobra.Command {
	var opts operation.Options

	cmd := &cobra.Command{
		Use:     "install <package_dir>",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    usageArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.install")
			logger.Info().
				Str("package", args[0]).
				Bool("editable", opts.Editable).
				Bool("refreshCache", opts.RefreshCache).
				Msg("Installing package")

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			installer, err := operation.NewInstaller(cfg, opts)
			if err != nil {
				return err
			}
			recorded, err := installer.AddPackage(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), style.Success(fmt.Sprintf(MsgInstalled, recorded)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Editable, "editable", false, MsgFlagEditable)
	cmd.Flags().BoolVar(&opts.RefreshCache, "refresh-cache", false, MsgFlagRefreshCache)
	cmd.MarkFlagsMutuallyExclusive("editable", "refresh-cache")

	return cmd
}

// toolArgs returns the arguments after "--", rejecting anything else
func toolArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return nil, errors.New(errors.ErrUsage, MsgNoSeparator)
	}
	if dash > 0 {
		return nil, errors.Newf(errors.ErrUsage, MsgArgsBeforeDash, args[:dash])
	}
	if len(args[dash:]) == 0 {
		return nil, errors.New(errors.ErrUsage, MsgNoCommand)
	}
	return args[dash:], nil
}

func newExecCmd(g *globalOptions) *cobra.Command {
	var opts operation.Options

	cmd := &cobra.Command{
		Use:     "exec [--master] [--minion] [--block] -- <salt-command> [args...]",
		Short:   MsgExecShort,
		Long:    MsgExecLong,
		Example: MsgExecExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := toolArgs(cmd, args)
			if err != nil {
				return err
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			opts.ExecutorOptions = append(opts.ExecutorOptions, stdio(cmd))
			op, err := operation.NewExecutor(cfg, opts)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			code, err := op.Exec(ctx, tool)
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Master, "master", false, MsgFlagMaster)
	cmd.Flags().BoolVar(&opts.Minion, "minion", false, MsgFlagMinion)
	cmd.Flags().BoolVar(&opts.Block, "block", false, MsgFlagBlock)

	return cmd
}

func newRefreshCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		Short:   MsgRefreshShort,
		GroupID: "core",
		Args:    usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			op, err := operation.NewRefresher(cfg, operation.Options{})
			if err != nil {
				return err
			}
			roots, err := op.Roots()
			if err != nil {
				return err
			}
			if err := op.Refresh(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), style.Success(fmt.Sprintf(MsgRefreshed, len(roots), op.Paths.Prefix())))
			return nil
		},
	}
}

func newListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "core",
		Args:    usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			op, err := operation.NewInstaller(cfg, operation.Options{Editable: true})
			if err != nil {
				return err
			}
			roots, err := op.Roots()
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoRoots)
				return nil
			}

			rows := make([][]string, 0, len(roots))
			for i, root := range roots {
				rows = append(rows, []string{strconv.Itoa(i + 1), root})
			}
			return style.Table(cmd.OutOrStdout(), []string{"#", "Template root"}, rows)
		},
	}
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		GroupID: "core",
		Args:    usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			op, err := operation.NewRefresher(cfg, operation.Options{})
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			if err := op.Refresh(ctx); err != nil {
				return err
			}
			roots, err := op.Roots()
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoRoots)
				return nil
			}

			w, err := watch.New(roots, cfg.Watch.Debounce)
			if err != nil {
				return err
			}
			return w.Run(ctx, op.Refresh)
		},
	}
}
