package registry

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/arthur-debert/saltbox/pkg/paths"
	"github.com/spf13/afero"
)

// Registry is an ordered, deduplicated list of template roots
type Registry struct {
	fs    afero.Fs
	roots []string
}

// New creates a registry over fs holding the given roots
func New(fs afero.Fs, roots []string) *Registry {
	copied := make([]string, len(roots))
	copy(copied, roots)
	return &Registry{fs: fs, roots: copied}
}

// Load reads a registry file. A missing file yields an empty registry.
func Load(fs afero.Fs, path string) (*Registry, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat registry %s", path)
	}
	if !exists {
		return New(fs, nil), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read registry %s", path)
	}

	var roots []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		roots = append(roots, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to parse registry %s", path)
	}

	return New(fs, roots), nil
}

// Append registers a template root. The root must be an existing directory;
// it is stored as a cleaned absolute path and ignored if already present.
func (r *Registry) Append(root string) error {
	logger := logging.GetLogger("registry")

	normalized, err := paths.NormalizePath(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidRoot, "invalid template root %q", root)
	}

	info, err := r.fs.Stat(normalized)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidRoot, "template root %s does not exist", normalized).
			WithDetail("path", normalized)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidRoot, "template root %s is not a directory", normalized).
			WithDetail("path", normalized)
	}

	if r.Contains(normalized) {
		logger.Debug().Str("root", normalized).Msg("Template root is a duplicate, skipping")
		return nil
	}

	r.roots = append(r.roots, normalized)
	logger.Debug().Str("root", normalized).Int("count", len(r.roots)).Msg("Template root registered")
	return nil
}

// Contains reports whether root is registered, comparing cleaned paths
func (r *Registry) Contains(root string) bool {
	cleaned := filepath.Clean(root)
	for _, existing := range r.roots {
		if filepath.Clean(existing) == cleaned {
			return true
		}
	}
	return false
}

// Roots returns the registered roots in insertion order
func (r *Registry) Roots() []string {
	out := make([]string, len(r.roots))
	copy(out, r.roots)
	return out
}

// Len returns the number of registered roots
func (r *Registry) Len() int {
	return len(r.roots)
}

// Persist replaces the registry file with the in-memory list.
// The content is written to a sibling temp file first and renamed into place.
func (r *Registry) Persist(path string) error {
	dir := filepath.Dir(path)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create registry directory %s", dir)
	}

	var buf bytes.Buffer
	for _, root := range r.roots {
		buf.WriteString(root)
		buf.WriteByte('\n')
	}

	tmp, err := afero.TempFile(r.fs, dir, ".registry-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create temp registry in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write registry %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to close registry %s", path)
	}
	if err := r.fs.Chmod(tmpName, 0644); err != nil {
		_ = r.fs.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set registry permissions")
	}
	if err := r.fs.Rename(tmpName, path); err != nil {
		_ = r.fs.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace registry %s", path)
	}

	return nil
}
