package template

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

type copyMerger struct {
	rendered string
	calls    int
	err      error
}

func (m *copyMerger) Merge(_ context.Context, rendered, dst string) error {
	m.calls++
	m.rendered = rendered
	if m.err != nil {
		return m.err
	}
	data, err := os.ReadFile(filepath.Join(rendered, "SALTROOT.txt"))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dst, "SALTROOT.txt"), data, 0644)
}

func TestRenderRoot_IsolatesFailures(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "good.conf"), "root: {{$ SALTROOT $}}\n", 0644)
	writeFile(t, filepath.Join(src, "bad.conf"), "root: {{$ NOPE $}}\n", 0644)
	writeFile(t, filepath.Join(src, "sub", "plain.txt"), "no markers {{ here }}\n", 0600)
	writeFile(t, filepath.Join(src, "blob.bin"), "\x00{{$ SALTROOT $}}", 0644)

	r := NewRenderer(WithTempDir(t.TempDir()))
	tree, err := r.RenderRoot(context.Background(), src, Variables{"SALTROOT": "/var/dst"})
	require.NoError(t, err)
	defer func() { _ = tree.Cleanup() }()

	good, err := os.ReadFile(filepath.Join(tree.Root, "good.conf"))
	require.NoError(t, err)
	assert.Equal(t, "root: /var/dst\n", string(good))

	bad, err := os.ReadFile(filepath.Join(tree.Root, "bad.conf"))
	require.NoError(t, err)
	assert.Equal(t, "root: {{$ NOPE $}}\n", string(bad))

	plain, err := os.ReadFile(filepath.Join(tree.Root, "sub", "plain.txt"))
	require.NoError(t, err)
	assert.Equal(t, "no markers {{ here }}\n", string(plain))
	info, err := os.Stat(filepath.Join(tree.Root, "sub", "plain.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	blob, err := os.ReadFile(filepath.Join(tree.Root, "blob.bin"))
	require.NoError(t, err)
	assert.Equal(t, "\x00{{$ SALTROOT $}}", string(blob))

	assert.Equal(t, []string{"good.conf"}, tree.Rendered)
	assert.Equal(t, []string{"bad.conf"}, tree.Failed)
	assert.ElementsMatch(t, []string{"blob.bin", filepath.Join("sub", "plain.txt")}, tree.Skipped)

	// the source is never modified
	orig, err := os.ReadFile(filepath.Join(src, "good.conf"))
	require.NoError(t, err)
	assert.Equal(t, "root: {{$ SALTROOT $}}\n", string(orig))
}

func TestRenderRoot_PreservesSymlinks(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "target.txt"), "{{$ SALTROOT $}}", 0644)
	require.NoError(t, os.Symlink("target.txt", filepath.Join(src, "link.txt")))

	tree, err := NewRenderer().RenderRoot(context.Background(), src, Variables{"SALTROOT": "/d"})
	require.NoError(t, err)
	defer func() { _ = tree.Cleanup() }()

	link, err := os.Readlink(filepath.Join(tree.Root, "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, "target.txt", link)
	assert.Equal(t, []string{"target.txt"}, tree.Rendered)
}

// restoreWritable lets the test cleanup remove read-only directories
func restoreWritable(t *testing.T, dirs ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, dir := range dirs {
			_ = os.Chmod(dir, 0755)
		}
	})
}

func TestRenderRoot_FollowsSymlinkedRoot(t *testing.T) {
	real := t.TempDir()
	writeFile(t, filepath.Join(real, "srv", "salt", "top.sls"), "root: {{$ SALTROOT $}}", 0644)

	link := filepath.Join(t.TempDir(), "recipe")
	require.NoError(t, os.Symlink(real, link))

	tree, err := NewRenderer().RenderRoot(context.Background(), link, Variables{"SALTROOT": "/opt/box"})
	require.NoError(t, err)
	defer func() { _ = tree.Cleanup() }()

	assert.Equal(t, []string{filepath.Join("srv", "salt", "top.sls")}, tree.Rendered)
	data, err := os.ReadFile(filepath.Join(tree.Root, "srv", "salt", "top.sls"))
	require.NoError(t, err)
	assert.Equal(t, "root: /opt/box", string(data))
}

func TestRenderRoot_ReadOnlySource(t *testing.T) {
	src := t.TempDir()
	etc := filepath.Join(src, "etc")
	writeFile(t, filepath.Join(etc, "minion"), "root_dir: {{$ SALTROOT $}}", 0444)
	require.NoError(t, os.Chmod(etc, 0555))
	restoreWritable(t, etc)

	tree, err := NewRenderer(WithTempDir(t.TempDir())).RenderRoot(context.Background(), src, Variables{"SALTROOT": "/opt/box"})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join("etc", "minion")}, tree.Rendered)
	assert.Empty(t, tree.Failed)

	rendered := filepath.Join(tree.Root, "etc", "minion")
	data, err := os.ReadFile(rendered)
	require.NoError(t, err)
	assert.Equal(t, "root_dir: /opt/box", string(data))

	info, err := os.Stat(rendered)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())
	info, err = os.Stat(filepath.Join(tree.Root, "etc"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0555), info.Mode().Perm())

	require.NoError(t, tree.Cleanup())
	_, err = os.Stat(tree.Root)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderRoot_InvalidRoot(t *testing.T) {
	_, err := NewRenderer().RenderRoot(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidRoot))
}

func TestRenderedTree_Cleanup(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a", 0644)

	tree, err := NewRenderer().RenderRoot(context.Background(), src, nil)
	require.NoError(t, err)

	require.NoError(t, tree.Cleanup())
	_, err = os.Stat(tree.Root)
	assert.True(t, os.IsNotExist(err))

	var nilTree *RenderedTree
	assert.NoError(t, nilTree.Cleanup())
}

func TestRenderAndMerge_SaltRoot(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "SALTROOT.txt"), "{{$ SALTROOT $}}", 0644)

	merger := &copyMerger{}
	err := NewRenderer().RenderAndMerge(context.Background(), src, dst, Variables{"SALTROOT": "ignored"}, merger)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "SALTROOT.txt"))
	require.NoError(t, err)
	assert.Equal(t, dst, string(data))

	assert.Equal(t, 1, merger.calls)
	_, err = os.Stat(merger.rendered)
	assert.True(t, os.IsNotExist(err), "scratch tree should be removed")
}

func TestRenderAndMerge_CleansUpOnMergeError(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "SALTROOT.txt"), "{{$ SALTROOT $}}", 0644)

	merger := &copyMerger{err: errors.New(errors.ErrMergeFailed, "boom")}
	err := NewRenderer().RenderAndMerge(context.Background(), src, t.TempDir(), nil, merger)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMergeFailed))

	_, statErr := os.Stat(merger.rendered)
	assert.True(t, os.IsNotExist(statErr))
}
