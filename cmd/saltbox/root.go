// Package saltbox implements the saltbox command line.
package saltbox

import (
	stderrors "errors"
	"fmt"

	"github.com/arthur-debert/saltbox/internal/version"
	"github.com/arthur-debert/saltbox/pkg/config"
	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity int
	logLevel  string
	prefix    string
}

// loadConfig merges the configuration with the command-line prefix applied
func (g *globalOptions) loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{}
	if g.prefix != "" {
		overrides["paths.prefix"] = g.prefix
	}
	cfg, err := config.Load(config.LoadOptions{Overrides: overrides})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("config", cfg.String()).Msg("Configuration loaded")
	return cfg, nil
}

// ExitError carries a dispatched tool's nonzero exit code
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// ExitCode maps a command error to the process exit status. A tool's own
// exit code passes through unchanged.
func ExitCode(err error) int {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return errors.ExitCode(err)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "saltbox",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity, g.logLevel)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", MsgFlagLogLevel)
	rootCmd.PersistentFlags().StringVar(&g.prefix, "prefix", "", MsgFlagPrefix)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrUsage, cmd.CommandPath())
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(newInstallCmd(g))
	rootCmd.AddCommand(newExecCmd(g))
	rootCmd.AddCommand(newRefreshCmd(g))
	rootCmd.AddCommand(newListCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newBoxCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func usageArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return errors.Wrap(err, errors.ErrUsage, cmd.CommandPath())
		}
		return nil
	}
}

func usageMinArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return errors.Wrap(err, errors.ErrUsage, cmd.CommandPath())
		}
		return nil
	}
}
