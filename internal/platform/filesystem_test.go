package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystemWriteReadRemove(t *testing.T) {
	fsys := NewOSFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	require.NoError(t, fsys.WriteFile(path, []byte("hello"), 0644))
	assert.True(t, fsys.Exists(path))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, fsys.Remove(path))
	assert.False(t, fsys.Exists(path))
}

func TestOSFileSystemMkdirAllAndReadDir(t *testing.T) {
	fsys := NewOSFileSystem()
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")

	require.NoError(t, fsys.MkdirAll(nested, 0755))
	require.NoError(t, fsys.WriteFile(filepath.Join(nested, "f.txt"), []byte("x"), 0644))

	entries, err := fsys.ReadDir(nested)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Name())
}

func TestOSFileSystemExistsFalseForMissing(t *testing.T) {
	fsys := NewOSFileSystem()
	assert.False(t, fsys.Exists(filepath.Join(t.TempDir(), "nope.txt")))
}
