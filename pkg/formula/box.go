package formula

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/saltbox/pkg/config"
	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/executor"
	"github.com/arthur-debert/saltbox/pkg/filesystem"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/arthur-debert/saltbox/pkg/operation"
	"github.com/arthur-debert/saltbox/pkg/paths"
)

// Box is a recipe directory with a manifest
type Box struct {
	Path         string
	Name         string
	ManifestPath string
	Manifest     *Manifest
}

// Load reads the box at dir
func Load(dir string) (*Box, error) {
	abs, err := paths.NormalizePath(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidRoot, "box %s is not a directory", abs)
	}

	m, manifestPath, err := LoadManifest(abs)
	if err != nil {
		return nil, err
	}

	return &Box{
		Path:         abs,
		Name:         filepath.Base(abs),
		ManifestPath: manifestPath,
		Manifest:     m,
	}, nil
}

// Title returns the manifest name, or the directory name when unset
func (b *Box) Title() string {
	if b.Manifest.Name != "" {
		return b.Manifest.Name
	}
	return b.Name
}

// Discover finds boxes one level below each search path and returns them
// sorted by name. Boxes with broken manifests are logged and skipped.
func Discover(searchPaths []string) ([]*Box, error) {
	logger := logging.GetLogger("formula")

	seen := map[string]bool{}
	var boxes []*Box

	for _, search := range searchPaths {
		for _, manifest := range []string{ManifestYAML, ManifestTOML} {
			matches, err := filepath.Glob(filepath.Join(search, "*", manifest))
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput, "bad search path %s", search)
			}

			for _, match := range matches {
				dir := filepath.Dir(match)
				if seen[dir] {
					continue
				}
				seen[dir] = true

				box, err := Load(dir)
				if err != nil {
					logger.Warn().Err(err).Str("box", dir).Msg("Skipping box with invalid manifest")
					continue
				}
				boxes = append(boxes, box)
			}
		}
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Name == boxes[j].Name {
			return boxes[i].Path < boxes[j].Path
		}
		return boxes[i].Name < boxes[j].Name
	})
	return boxes, nil
}

// Find returns the discovered box called name
func Find(searchPaths []string, name string) (*Box, error) {
	boxes, err := Discover(searchPaths)
	if err != nil {
		return nil, err
	}
	for _, box := range boxes {
		if box.Name == name {
			return box, nil
		}
	}
	return nil, errors.Newf(errors.ErrNotFound, "box %q not found in %v", name, searchPaths)
}

// RunOptions configures RunFormula
type RunOptions struct {
	// BinPrefix locates the salt executables; the temporary prefix has none
	BinPrefix string

	// Overrides are applied after the formula's own config
	Overrides map[string]interface{}

	ExecutorOptions []executor.Option
}

// RunFormula installs box into a throwaway prefix, runs formula with args and
// removes the prefix. It returns the salt command's exit code.
func RunFormula(ctx context.Context, box *Box, formulaName string, args []string, opts RunOptions) (int, error) {
	logger := logging.GetLogger("formula")

	f, err := box.Manifest.Formula(formulaName)
	if err != nil {
		return -1, err
	}
	values, err := f.ParseArgs(args)
	if err != nil {
		return -1, err
	}
	command, err := f.Command(values)
	if err != nil {
		return -1, err
	}

	prefix, err := os.MkdirTemp("", "saltbox-box-*")
	if err != nil {
		return -1, errors.Wrap(err, errors.ErrDirCreate, "cannot create temporary prefix")
	}
	defer func() {
		if err := filesystem.RemoveTree(prefix); err != nil {
			logger.Warn().Err(err).Str("prefix", prefix).Msg("Failed to remove temporary prefix")
		}
	}()

	overrides := map[string]interface{}{}
	for k, v := range f.Config {
		overrides[k] = v
	}
	for k, v := range opts.Overrides {
		overrides[k] = v
	}
	overrides["paths.prefix"] = prefix
	overrides["install.cache"] = false
	if opts.BinPrefix != "" {
		overrides["paths.bin"] = opts.BinPrefix
	}

	cfg, err := config.Load(config.LoadOptions{Overrides: overrides})
	if err != nil {
		return -1, err
	}

	installer, err := operation.NewInstaller(cfg, operation.Options{Editable: true})
	if err != nil {
		return -1, err
	}
	if _, err := installer.AddPackage(box.Path); err != nil {
		return -1, err
	}

	runner, err := operation.NewExecutor(cfg, operation.Options{ExecutorOptions: opts.ExecutorOptions})
	if err != nil {
		return -1, err
	}

	logger.Info().
		Str("box", box.Name).
		Str("formula", f.Name).
		Strs("command", command).
		Msg("Running formula")

	return runner.Exec(ctx, command)
}
