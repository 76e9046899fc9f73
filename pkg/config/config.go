package config

import (
	"time"

	"github.com/arthur-debert/saltbox/pkg/paths"
)

// Config is the fully merged saltbox configuration
type Config struct {
	Paths    PathsConfig    `koanf:"paths"`
	Salt     SaltConfig     `koanf:"salt"`
	Install  InstallConfig  `koanf:"install"`
	Merge    MergeConfig    `koanf:"merge"`
	Daemon   DaemonConfig   `koanf:"daemon"`
	Watch    WatchConfig    `koanf:"watch"`
	Template TemplateConfig `koanf:"template"`
	Boxes    BoxesConfig    `koanf:"boxes"`
}

// PathsConfig holds the prefix and its relative layout
type PathsConfig struct {
	Prefix   string `koanf:"prefix"`
	Registry string `koanf:"registry"`
	Cache    string `koanf:"cache"`
	Config   string `koanf:"config"`
	Run      string `koanf:"run"`
	Bin      string `koanf:"bin"`
}

// SaltConfig configures the external salt executables
type SaltConfig struct {
	LogLevel string `koanf:"loglevel"`
}

// InstallConfig configures the install command
type InstallConfig struct {
	Cache bool `koanf:"cache"`
}

// MergeConfig selects the sync tool and the lock file name
type MergeConfig struct {
	Tool     string `koanf:"tool"`
	LockFile string `koanf:"lockfile"`
}

// DaemonConfig configures daemon supervision
type DaemonConfig struct {
	Poll time.Duration `koanf:"poll"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// TemplateConfig holds extra template variables
type TemplateConfig struct {
	Vars map[string]string `koanf:"vars"`
}

// BoxesConfig lists directories searched for recipe boxes
type BoxesConfig struct {
	Search []string `koanf:"search"`
}

// Merge tools
const (
	MergeToolRsync  = "rsync"
	MergeToolNative = "native"
)

// Layout converts the path configuration into a paths.Layout
func (c *Config) Layout() paths.Layout {
	return paths.Layout{
		Registry: c.Paths.Registry,
		Cache:    c.Paths.Cache,
		Config:   c.Paths.Config,
		Run:      c.Paths.Run,
		Bin:      c.Paths.Bin,
		LockFile: c.Merge.LockFile,
	}
}

// ResolvePaths builds the concrete paths for this configuration
func (c *Config) ResolvePaths() (*paths.Paths, error) {
	return paths.New(c.Paths.Prefix, c.Layout())
}
