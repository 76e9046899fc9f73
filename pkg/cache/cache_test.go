package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/internal/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, content string) string {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "salt"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "salt", "top.sls"), []byte(content), 0644))
	return src
}

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "var", "cache", "saltbox")
	c, err := New(root)
	require.NoError(t, err)
	assert.Equal(t, root, c.Root())
	assert.DirExists(t, root)
}

func TestDir(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	dir, err := c.Dir("/tmp/r1/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Root(), hashutil.PathDigest("/tmp/r1")), dir)

	again, err := c.Dir("/tmp/../tmp/r1")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestAdd(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	src := newSource(t, "base: {}")

	slot, err := c.Add(src)
	require.NoError(t, err)

	expected, err := c.Dir(src)
	require.NoError(t, err)
	assert.Equal(t, expected, slot)

	data, err := os.ReadFile(filepath.Join(slot, "salt", "top.sls"))
	require.NoError(t, err)
	assert.Equal(t, "base: {}", string(data))
}

func TestAdd_ExistingSlotRefused(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	src := newSource(t, "v1")

	_, err = c.Add(src)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(src, "salt", "top.sls"), []byte("v2"), 0644))
	_, err = c.Add(src)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	slot, _ := c.Dir(src)
	data, err := os.ReadFile(filepath.Join(slot, "salt", "top.sls"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestAdd_Overwrite(t *testing.T) {
	c, err := New(t.TempDir(), WithOverwrite(true))
	require.NoError(t, err)
	src := newSource(t, "v1")

	slot, err := c.Add(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(slot, "stale"), []byte("x"), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(src, "salt", "top.sls"), []byte("v2"), 0644))
	again, err := c.Add(src)
	require.NoError(t, err)
	assert.Equal(t, slot, again)

	data, err := os.ReadFile(filepath.Join(slot, "salt", "top.sls"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
	assert.NoFileExists(t, filepath.Join(slot, "stale"))
}

func TestAdd_InvalidSource(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = c.Add(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidRoot))
}

func TestAdd_SymlinkedSource(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	src := newSource(t, "base: {}")
	link := filepath.Join(t.TempDir(), "formula")
	require.NoError(t, os.Symlink(src, link))

	slot, err := c.Add(link)
	require.NoError(t, err)

	info, err := os.Lstat(slot)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(filepath.Join(slot, "salt", "top.sls"))
	require.NoError(t, err)
	assert.Equal(t, "base: {}", string(data))
}

func TestAdd_OverwriteReadOnlySlot(t *testing.T) {
	c, err := New(t.TempDir(), WithOverwrite(true))
	require.NoError(t, err)
	src := newSource(t, "v1")
	saltDir := filepath.Join(src, "salt")
	require.NoError(t, os.Chmod(saltDir, 0555))
	t.Cleanup(func() { _ = os.Chmod(saltDir, 0755) })

	slot, err := c.Add(src)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(slot, "salt"), 0755) })

	info, err := os.Stat(filepath.Join(slot, "salt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0555), info.Mode().Perm())

	_, err = c.Add(src)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(slot, "salt", "top.sls"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}
