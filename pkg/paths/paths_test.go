package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLayout(t *testing.T) {
	prefix := t.TempDir()

	p, err := New(prefix, DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, prefix, p.Prefix())
	assert.Equal(t, filepath.Join(prefix, "etc", "saltbox", "registry.txt"), p.RegistryPath())
	assert.Equal(t, filepath.Join(prefix, "var", "cache", "saltbox"), p.CacheRoot())
	assert.Equal(t, filepath.Join(prefix, "etc", "salt"), p.ConfigDir())
	assert.Equal(t, filepath.Join(prefix, "var", "run"), p.RunDir())
	assert.Equal(t, filepath.Join(prefix, "bin"), p.BinPrefix())
	assert.Equal(t, filepath.Join(prefix, "var", "run", "salt-minion.pid"), p.PidFile("salt-minion.pid"))
	assert.Equal(t, filepath.Join(prefix, "lock"), p.LockPath())
	assert.Equal(t, filepath.Join(prefix, "share", "saltbox", "base"), p.BaseTemplatePath())
}

func TestNew_EmptyLayoutFieldsUseDefaults(t *testing.T) {
	prefix := t.TempDir()

	p, err := New(prefix, Layout{Config: "conf"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(prefix, "conf"), p.ConfigDir())
	assert.Equal(t, filepath.Join(prefix, "etc", "saltbox", "registry.txt"), p.RegistryPath())
	assert.Equal(t, "lock", p.LockFileName())
}

func TestNew_AbsoluteLayoutEntries(t *testing.T) {
	prefix := t.TempDir()
	bin := t.TempDir()

	p, err := New(prefix, Layout{Bin: bin, Cache: "/var/tmp/sbcache"})
	require.NoError(t, err)

	assert.Equal(t, bin, p.BinPrefix())
	assert.Equal(t, "/var/tmp/sbcache", p.CacheRoot())
}

func TestNew_RelativePrefixIsMadeAbsolute(t *testing.T) {
	p, err := New("relative/prefix", DefaultLayout())
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "relative", "prefix"), p.Prefix())
}

func TestDefaultPrefix(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv(EnvPrefix, "/opt/saltbox")
		assert.Equal(t, "/opt/saltbox", DefaultPrefix())
	})

	t.Run("xdg fallback", func(t *testing.T) {
		t.Setenv(EnvPrefix, "")
		assert.Equal(t, AppDirName, filepath.Base(DefaultPrefix()))
	})
}

func TestNormalizePath(t *testing.T) {
	_, err := NormalizePath("")
	assert.Error(t, err)

	got, err := NormalizePath("/tmp/r1/../r2/")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/r2", got)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = NormalizePath("~/recipes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "recipes"), got)
}
