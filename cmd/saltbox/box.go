package saltbox

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/saltbox/pkg/config"
	"github.com/arthur-debert/saltbox/pkg/executor"
	"github.com/arthur-debert/saltbox/pkg/formula"
	"github.com/arthur-debert/saltbox/pkg/style"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newBoxCmd(g *globalOptions) *cobra.Command {
	var searchPaths []string

	cmd := &cobra.Command{
		Use:     "box",
		Short:   MsgBoxShort,
		GroupID: "core",
	}
	cmd.PersistentFlags().StringArrayVar(&searchPaths, "path", nil, MsgFlagBoxPath)

	search := func(cfg *config.Config) []string {
		if len(searchPaths) > 0 {
			return searchPaths
		}
		return cfg.Boxes.Search
	}

	cmd.AddCommand(newBoxListCmd(g, search))
	cmd.AddCommand(newBoxShowCmd(g, search))
	cmd.AddCommand(newBoxExecCmd(g, search))
	return cmd
}

// resolveBox loads ref as a directory, or looks it up by name
func resolveBox(ref string, searchPaths []string) (*formula.Box, error) {
	if info, err := os.Stat(ref); err == nil && info.IsDir() {
		return formula.Load(ref)
	}
	return formula.Find(searchPaths, ref)
}

func newBoxListCmd(g *globalOptions, search func(*config.Config) []string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgBoxListShort,
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			boxes, err := formula.Discover(search(cfg))
			if err != nil {
				return err
			}
			if len(boxes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoBoxes)
				return nil
			}

			var rows [][]string
			for _, box := range boxes {
				rows = append(rows, []string{
					box.Name,
					strings.Join(box.Manifest.FormulaNames(), ", "),
					box.Path,
				})
			}
			return style.Table(cmd.OutOrStdout(), []string{"Box", "Formulas", "Path"}, rows)
		},
	}
}

func newBoxShowCmd(g *globalOptions, search func(*config.Config) []string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <box>",
		Short: MsgBoxShowShort,
		Args:  usageArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			box, err := resolveBox(args[0], search(cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, style.Title(box.Title()))
			fmt.Fprintln(out, style.Path(box.Path))
			if box.Manifest.Description != "" {
				fmt.Fprint(out, style.RenderMarkdown(box.Manifest.Description, 80))
			}

			fmt.Fprintf(out, "\n%s\n", style.Title(MsgFormulas))
			for _, f := range box.Manifest.Formulas {
				fmt.Fprintf(out, "\n%s\n", style.NameStyle.Render(f.Name))
				fmt.Fprint(out, f.Usage())
			}
			return nil
		},
	}
}

func newBoxExecCmd(g *globalOptions, search func(*config.Config) []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <box> <formula> [formula-args...]",
		Short: MsgBoxExecShort,
		Long:  MsgBoxExecLong,
		Args:  usageMinArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			box, err := resolveBox(args[0], search(cfg))
			if err != nil {
				return err
			}
			p, err := cfg.ResolvePaths()
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			code, err := formula.RunFormula(ctx, box, args[1], args[2:], formula.RunOptions{
				BinPrefix:       p.BinPrefix(),
				ExecutorOptions: []executor.Option{stdio(cmd)},
			})
			if stderrors.Is(err, pflag.ErrHelp) {
				f, ferr := box.Manifest.Formula(args[1])
				if ferr != nil {
					return ferr
				}
				fmt.Fprint(cmd.OutOrStdout(), f.Usage())
				return nil
			}
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	// everything after the formula name belongs to the formula
	cmd.Flags().SetInterspersed(false)
	return cmd
}
