package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sberrors "github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

const (
	// EnvPrefix is the prefix of environment overrides
	EnvPrefix = "SALTBOX_"

	// ConfigFile is the prefix-relative location of the optional config file
	ConfigFile = "etc/saltbox/saltbox.toml"
)

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// LoadOptions carries command-line overrides, keyed by dotted config path
type LoadOptions struct {
	Overrides map[string]interface{}
}

// Load merges defaults, the prefix config file, the environment and overrides
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, sberrors.Wrap(err, sberrors.ErrConfigParse, "failed to load defaults")
	}

	prefix := resolvePrefix(opts.Overrides)

	configPath := filepath.Join(prefix, ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, sberrors.Wrapf(err, sberrors.ErrConfigParse, "failed to load config from %s", configPath)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, sberrors.Wrap(err, sberrors.ErrConfigLoad, "failed to load env vars")
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, sberrors.Wrap(err, sberrors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, sberrors.Wrap(err, sberrors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg.Paths.Prefix = prefix
	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration built from defaults and the environment only
func Default() (*Config, error) {
	return Load(LoadOptions{})
}

// envKey maps SALTBOX_MERGE_TOOL to merge.tool
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// resolvePrefix picks the prefix before any file is read, since the config file lives under it
func resolvePrefix(overrides map[string]interface{}) string {
	if v, ok := overrides["paths.prefix"].(string); ok && v != "" {
		return v
	}
	if v := os.Getenv(EnvPrefix + "PATHS_PREFIX"); v != "" {
		return v
	}
	return paths.DefaultPrefix()
}

func postProcessConfig(cfg *Config) error {
	cfg.Merge.Tool = strings.ToLower(strings.TrimSpace(cfg.Merge.Tool))
	switch cfg.Merge.Tool {
	case "":
		cfg.Merge.Tool = MergeToolRsync
	case MergeToolRsync, MergeToolNative:
	default:
		return sberrors.Newf(sberrors.ErrConfigParse, "unknown merge tool %q", cfg.Merge.Tool).
			WithDetail("allowed", []string{MergeToolRsync, MergeToolNative})
	}

	if cfg.Salt.LogLevel == "" {
		cfg.Salt.LogLevel = "debug"
	}
	if cfg.Template.Vars == nil {
		cfg.Template.Vars = map[string]string{}
	}
	if cfg.Daemon.Poll <= 0 {
		return sberrors.Newf(sberrors.ErrConfigParse, "daemon.poll must be positive, got %s", cfg.Daemon.Poll)
	}
	if cfg.Watch.Debounce < 0 {
		return sberrors.Newf(sberrors.ErrConfigParse, "watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}

	return nil
}

// String renders a short description for debug logs
func (c *Config) String() string {
	return fmt.Sprintf("prefix=%s tool=%s cache=%t", c.Paths.Prefix, c.Merge.Tool, c.Install.Cache)
}
