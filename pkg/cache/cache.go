// Package cache keeps private copies of installed recipe directories.
//
// Each source directory gets one slot under the cache root, named by the MD5
// digest of its absolute path, so the same source always maps to the same
// slot. Re-adding a source whose slot exists is refused unless the cache was
// built with WithOverwrite.
package cache

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/filesystem"
	"github.com/arthur-debert/saltbox/pkg/internal/hashutil"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/arthur-debert/saltbox/pkg/paths"
)

// Cache is an installation cache rooted at a directory
type Cache struct {
	root      string
	overwrite bool
}

// Option configures a Cache
type Option func(*Cache)

// WithOverwrite replaces an existing slot on Add instead of failing
func WithOverwrite(overwrite bool) Option {
	return func(c *Cache) {
		c.overwrite = overwrite
	}
}

// New creates the cache root if needed
func New(root string, opts ...Option) (*Cache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create cache root %s", root)
	}

	c := &Cache{root: root}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Root returns the cache root
func (c *Cache) Root() string {
	return c.root
}

// Dir returns the slot for source: root/md5(abs(source))
func (c *Cache) Dir(source string) (string, error) {
	abs, err := paths.NormalizePath(source)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, hashutil.PathDigest(abs)), nil
}

// Add copies source into its slot and returns the slot path
func (c *Cache) Add(source string) (string, error) {
	logger := logging.GetLogger("cache")

	abs, err := paths.NormalizePath(source)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidRoot, "package %s is not a directory", abs).
			WithDetail("path", abs)
	}

	slot, err := c.Dir(abs)
	if err != nil {
		return "", err
	}

	if _, err := os.Lstat(slot); err == nil {
		if !c.overwrite {
			return "", errors.Newf(errors.ErrAlreadyExists, "cache slot for %s already exists", abs).
				WithDetail("slot", slot)
		}
		logger.Info().Str("source", abs).Str("slot", slot).Msg("Replacing cached package")
		if err := filesystem.RemoveTree(slot); err != nil {
			return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot clear cache slot %s", slot)
		}
	}

	if err := filesystem.CopyTree(abs, slot); err != nil {
		_ = filesystem.RemoveTree(slot)
		return "", err
	}

	logger.Debug().Str("source", abs).Str("slot", slot).Msg("Package cached")
	return slot, nil
}
