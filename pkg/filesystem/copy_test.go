package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(src, "etc", "salt", "minion"), "root_dir: /opt\n", 0644)
	writeFile(t, filepath.Join(src, "bin", "run"), "#!/bin/sh\n", 0755)
	require.NoError(t, os.Symlink("minion", filepath.Join(src, "etc", "salt", "minion.link")))

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "bin", "run"), mtime, mtime))

	require.NoError(t, CopyTree(src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "etc", "salt", "minion"))
	require.NoError(t, err)
	assert.Equal(t, "root_dir: /opt\n", string(content))

	info, err := os.Stat(filepath.Join(dst, "bin", "run"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))

	link, err := os.Readlink(filepath.Join(dst, "etc", "salt", "minion.link"))
	require.NoError(t, err)
	assert.Equal(t, "minion", link)
}

func TestCopyTree_KeepsExistingFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "a.sls"), "new", 0644)
	writeFile(t, filepath.Join(dst, "a.sls"), "old", 0644)
	writeFile(t, filepath.Join(dst, "b.sls"), "untouched", 0644)

	require.NoError(t, CopyTree(src, dst))

	a, err := os.ReadFile(filepath.Join(dst, "a.sls"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(a))

	b, err := os.ReadFile(filepath.Join(dst, "b.sls"))
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(b))
}

func TestCopyTree_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x", 0644)

	err := CopyTree(file, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	err = CopyTree(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestCopyFile_ReplacesSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	writeFile(t, target, "keep", 0644)

	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.Symlink(target, dst))

	src := filepath.Join(dir, "src")
	writeFile(t, src, "fresh", 0600)
	require.NoError(t, CopyFile(src, dst))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	kept, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(kept))
}

func TestCopySymlink_ReplacesDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink("elsewhere", src))

	dst := filepath.Join(dir, "out", "link")
	writeFile(t, filepath.Join(dst, "inner"), "x", 0644)

	require.NoError(t, CopySymlink(src, dst))
	link, err := os.Readlink(dst)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", link)

	// identical link is left alone
	require.NoError(t, CopySymlink(src, dst))
}
