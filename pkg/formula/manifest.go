package formula

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Manifest file names, in lookup order
const (
	ManifestYAML = "saltbox.yaml"
	ManifestTOML = "saltbox.toml"
)

// Argument types
const (
	TypeString = "string"
	TypeBool   = "bool"
	TypeInt    = "int"
)

// Arg describes one formula argument
type Arg struct {
	Name       string      `yaml:"name" toml:"name"`
	Dest       string      `yaml:"dest" toml:"dest"`
	Help       string      `yaml:"help" toml:"help"`
	Required   bool        `yaml:"required" toml:"required"`
	Default    interface{} `yaml:"default" toml:"default"`
	Type       string      `yaml:"type" toml:"type"`
	Positional bool        `yaml:"positional" toml:"positional"`
}

// Formula is a named, parameterized salt invocation
type Formula struct {
	Name        string                 `yaml:"name" toml:"name"`
	Description string                 `yaml:"description" toml:"description"`
	Runner      string                 `yaml:"runner" toml:"runner"`
	SaltEnv     string                 `yaml:"saltenv" toml:"saltenv"`
	Config      map[string]interface{} `yaml:"config" toml:"config"`
	Args        []Arg                  `yaml:"args" toml:"args"`
}

// Manifest is the content of a box manifest
type Manifest struct {
	Name        string    `yaml:"name" toml:"name"`
	Description string    `yaml:"description" toml:"description"`
	Formulas    []Formula `yaml:"formulas" toml:"formulas"`
}

var envRef = regexp.MustCompile(`\$\{([^{}]+)\}`)

// expandEnv replaces ${VAR} with its value, leaving unset variables alone
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := envRef.FindStringSubmatch(ref)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ref
	})
}

func expandNode(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode && envRef.MatchString(node.Value) {
		node.Value = expandEnv(node.Value)
	}
	for _, child := range node.Content {
		expandNode(child)
	}
}

// ParseYAML decodes a YAML manifest, expanding ${VAR} references in scalars
func ParseYAML(data []byte) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "cannot parse YAML manifest")
	}
	expandNode(&root)

	var m Manifest
	if err := root.Decode(&m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "cannot decode YAML manifest")
	}
	return &m, m.validate()
}

// ParseTOML decodes a TOML manifest
func ParseTOML(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := toml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "cannot parse TOML manifest")
	}
	return &m, m.validate()
}

// LoadManifest reads the manifest in dir, preferring YAML over TOML
func LoadManifest(dir string) (*Manifest, string, error) {
	for _, name := range []string{ManifestYAML, ManifestTOML} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
		}

		var m *Manifest
		if name == ManifestYAML {
			m, err = ParseYAML(data)
		} else {
			m, err = ParseTOML(data)
		}
		if err != nil {
			return nil, "", errors.Wrapf(err, errors.ErrManifestInvalid, "invalid manifest %s", path)
		}
		return m, path, nil
	}
	return nil, "", errors.Newf(errors.ErrNotFound, "no %s or %s in %s", ManifestYAML, ManifestTOML, dir)
}

func (m *Manifest) validate() error {
	seen := map[string]bool{}
	for i := range m.Formulas {
		f := &m.Formulas[i]
		if f.Name == "" {
			return errors.Newf(errors.ErrManifestInvalid, "formula #%d has no name", i+1)
		}
		if f.Runner == "" {
			return errors.Newf(errors.ErrManifestInvalid, "formula %s has no runner", f.Name)
		}
		if seen[f.Name] {
			return errors.Newf(errors.ErrManifestInvalid, "formula %s is defined twice", f.Name)
		}
		seen[f.Name] = true

		for j := range f.Args {
			if err := f.Args[j].normalize(); err != nil {
				return errors.Wrapf(err, errors.ErrManifestInvalid, "formula %s", f.Name)
			}
		}
	}
	return nil
}

// Formula returns the formula called name
func (m *Manifest) Formula(name string) (*Formula, error) {
	for i := range m.Formulas {
		if m.Formulas[i].Name == name {
			return &m.Formulas[i], nil
		}
	}
	return nil, errors.Newf(errors.ErrFormulaNotFound, "formula %q not found (available: %v)", name, m.FormulaNames())
}

// FormulaNames returns formula names in sorted order
func (m *Manifest) FormulaNames() []string {
	names := make([]string, 0, len(m.Formulas))
	for _, f := range m.Formulas {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}
