package hashutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello, World!\n"), 0644))

	checksum, err := CalculateFileChecksum(path)
	require.NoError(t, err)
	assert.Len(t, checksum, 71) // "sha256:" + 64 hex chars

	again, err := CalculateFileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, checksum, again)

	require.NoError(t, os.WriteFile(path, []byte("changed\n"), 0644))
	changed, err := CalculateFileChecksum(path)
	require.NoError(t, err)
	assert.NotEqual(t, checksum, changed)
}

func TestCalculateFileChecksum_Missing(t *testing.T) {
	_, err := CalculateFileChecksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPathDigest(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", PathDigest(""))
	assert.Len(t, PathDigest("/tmp/r1"), 32)
	assert.Equal(t, PathDigest("/tmp/r1"), PathDigest("/tmp/r1"))
	assert.NotEqual(t, PathDigest("/tmp/r1"), PathDigest("/tmp/r2"))
}
