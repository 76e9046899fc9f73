package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/saltbox/pkg/errors"
)

const (
	// EnvPrefix overrides the installation prefix
	EnvPrefix = "SALTBOX_PREFIX"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"

	// AppDirName is the directory name used under XDG locations
	AppDirName = "saltbox"

	// BaseTemplateDir is where the bundled base template is materialized, relative to the prefix
	BaseTemplateDir = "share/saltbox/base"
)

// Layout holds the prefix-relative locations of the managed tree.
// Absolute entries are used as-is.
type Layout struct {
	Registry string
	Cache    string
	Config   string
	Run      string
	Bin      string
	LockFile string
}

// DefaultLayout returns the layout used when nothing is configured
func DefaultLayout() Layout {
	return Layout{
		Registry: "etc/saltbox/registry.txt",
		Cache:    "var/cache/saltbox",
		Config:   "etc/salt",
		Run:      "var/run",
		Bin:      "",
		LockFile: "lock",
	}
}

// Paths resolves every saltbox location for one installation prefix
type Paths struct {
	prefix string
	layout Layout
}

// DefaultPrefix returns SALTBOX_PREFIX when set, otherwise $XDG_DATA_HOME/saltbox
func DefaultPrefix() string {
	if prefix := os.Getenv(EnvPrefix); prefix != "" {
		return expandHome(prefix)
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// New creates a Paths instance. An empty prefix falls back to DefaultPrefix.
func New(prefix string, layout Layout) (*Paths, error) {
	if prefix == "" {
		prefix = DefaultPrefix()
	}

	abs, err := filepath.Abs(expandHome(prefix))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for prefix %s", prefix)
	}

	defaults := DefaultLayout()
	if layout.Registry == "" {
		layout.Registry = defaults.Registry
	}
	if layout.Cache == "" {
		layout.Cache = defaults.Cache
	}
	if layout.Config == "" {
		layout.Config = defaults.Config
	}
	if layout.Run == "" {
		layout.Run = defaults.Run
	}
	if layout.LockFile == "" {
		layout.LockFile = defaults.LockFile
	}

	return &Paths{prefix: filepath.Clean(abs), layout: layout}, nil
}

func (p *Paths) resolve(rel string) string {
	rel = expandHome(rel)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(p.prefix, rel)
}

// Prefix returns the installation prefix, which is also the merge destination root
func (p *Paths) Prefix() string {
	return p.prefix
}

// RegistryPath returns the registry file location
func (p *Paths) RegistryPath() string {
	return p.resolve(p.layout.Registry)
}

// CacheRoot returns the install cache root
func (p *Paths) CacheRoot() string {
	return p.resolve(p.layout.Cache)
}

// ConfigDir returns the rendered salt configuration directory
func (p *Paths) ConfigDir() string {
	return p.resolve(p.layout.Config)
}

// RunDir returns the directory holding daemon pid files
func (p *Paths) RunDir() string {
	return p.resolve(p.layout.Run)
}

// BinPrefix returns the directory containing the salt executables
func (p *Paths) BinPrefix() string {
	if p.layout.Bin == "" {
		return filepath.Join(p.prefix, "bin")
	}
	return p.resolve(p.layout.Bin)
}

// PidFile returns the path of a pid file inside the run directory
func (p *Paths) PidFile(name string) string {
	return filepath.Join(p.RunDir(), name)
}

// LockPath returns the merge lock file inside the destination root
func (p *Paths) LockPath() string {
	return filepath.Join(p.prefix, p.layout.LockFile)
}

// LockFileName returns the configured lock file name
func (p *Paths) LockFileName() string {
	return p.layout.LockFile
}

// BaseTemplatePath returns where the bundled base template is materialized
func (p *Paths) BaseTemplatePath() string {
	return filepath.Join(p.prefix, BaseTemplateDir)
}

// NormalizePath expands home, makes the path absolute and cleans it
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}
