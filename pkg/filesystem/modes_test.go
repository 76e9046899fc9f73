package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreWritable(t *testing.T, dirs ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, dir := range dirs {
			_ = os.Chmod(dir, 0755)
		}
	})
}

func TestCopyTree_SymlinkedRoot(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "etc", "minion"), "id: box\n", 0644)
	link := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.Symlink(src, link))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyTree(link, dst))

	content, err := os.ReadFile(filepath.Join(dst, "etc", "minion"))
	require.NoError(t, err)
	assert.Equal(t, "id: box\n", string(content))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCopyTree_ReadOnlyDirectories(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	etc := filepath.Join(src, "etc")
	writeFile(t, filepath.Join(etc, "salt", "minion"), "v1", 0444)
	require.NoError(t, os.Chmod(filepath.Join(etc, "salt"), 0555))
	require.NoError(t, os.Chmod(etc, 0555))
	restoreWritable(t, filepath.Join(etc, "salt"), etc,
		filepath.Join(dst, "etc", "salt"), filepath.Join(dst, "etc"))

	require.NoError(t, CopyTree(src, dst))

	for _, dir := range []string{"etc", filepath.Join("etc", "salt")} {
		info, err := os.Stat(filepath.Join(dst, dir))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0555), info.Mode().Perm(), dir)
	}
	info, err := os.Stat(filepath.Join(dst, "etc", "salt", "minion"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())

	// copying again over the read-only destination succeeds
	require.NoError(t, os.Chmod(etc, 0755))
	require.NoError(t, os.Chmod(filepath.Join(etc, "salt"), 0755))
	require.NoError(t, os.Chmod(filepath.Join(etc, "salt", "minion"), 0644))
	writeFile(t, filepath.Join(etc, "salt", "minion"), "v2", 0444)
	require.NoError(t, os.Chmod(filepath.Join(etc, "salt"), 0555))
	require.NoError(t, os.Chmod(etc, 0555))

	require.NoError(t, CopyTree(src, dst))
	content, err := os.ReadFile(filepath.Join(dst, "etc", "salt", "minion"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}

func TestDirModes_AppliesDeepestFirst(t *testing.T) {
	root := t.TempDir()
	outer := filepath.Join(root, "outer")
	inner := filepath.Join(outer, "inner")
	restoreWritable(t, inner, outer)

	modes := &DirModes{}
	require.NoError(t, modes.Prepare(outer, 0500))
	require.NoError(t, modes.Prepare(inner, 0550))

	// directories stay writable until Apply
	writeFile(t, filepath.Join(inner, "file"), "x", 0644)

	require.NoError(t, modes.Apply())

	info, err := os.Stat(outer)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0500), info.Mode().Perm())
	info, err = os.Stat(inner)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0550), info.Mode().Perm())

	// a second Apply has nothing left to do
	require.NoError(t, modes.Apply())
}

func TestRemoveTree_ReadOnly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	sub := filepath.Join(root, "etc")
	writeFile(t, filepath.Join(sub, "minion"), "x", 0444)
	require.NoError(t, os.Chmod(sub, 0555))
	require.NoError(t, os.Chmod(root, 0555))
	restoreWritable(t, sub, root)

	require.NoError(t, RemoveTree(root))
	assert.NoDirExists(t, root)
}

func TestRemoveTree_Missing(t *testing.T) {
	assert.NoError(t, RemoveTree(filepath.Join(t.TempDir(), "missing")))
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))

	resolved, err := ResolveRoot(link)
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, expected, resolved)
}
