package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem(t *testing.T) {
	t.Parallel()

	t.Run("write then read", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		require.NoError(t, fs.WriteFile("/data/labels/0.txt", []byte("0 0.5 0.5 0.1 0.1\n"), 0644))

		data, err := fs.ReadFile("/data/labels/0.txt")
		require.NoError(t, err)
		assert.Equal(t, "0 0.5 0.5 0.1 0.1\n", string(data))
	})

	t.Run("append accumulates lines", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		require.NoError(t, fs.AppendFile("/labels/3.txt", []byte("a\n"), 0644))
		require.NoError(t, fs.AppendFile("/labels/3.txt", []byte("b\n"), 0644))

		data, err := fs.ReadFile("/labels/3.txt")
		require.NoError(t, err)
		assert.Equal(t, "a\nb\n", string(data))
	})

	t.Run("read missing file", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		_, err := fs.ReadFile("/missing.txt")
		assert.Error(t, err)
	})

	t.Run("readdir lists sorted children", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		require.NoError(t, fs.WriteFile("/ds/images/2.jpg", []byte("b"), 0644))
		require.NoError(t, fs.WriteFile("/ds/images/1.jpg", []byte("a"), 0644))
		require.NoError(t, fs.MkdirAll("/ds/images/sub", 0755))

		entries, err := fs.ReadDir("/ds/images")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "1.jpg", entries[0].Name())
		assert.Equal(t, "2.jpg", entries[1].Name())
		assert.Equal(t, "sub", entries[2].Name())
		assert.True(t, entries[2].IsDir())
	})

	t.Run("readdir missing directory", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		_, err := fs.ReadDir("/nowhere")
		assert.Error(t, err)
	})

	t.Run("copy file", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		require.NoError(t, fs.WriteFile("/src.txt", []byte("payload"), 0600))
		require.NoError(t, fs.CopyFile("/src.txt", "/dst.txt"))

		data, err := fs.ReadFile("/dst.txt")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		info, err := fs.Stat("/dst.txt")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("removeall drops subtree", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		require.NoError(t, fs.WriteFile("/tmp/render/0.png", []byte("x"), 0644))
		require.NoError(t, fs.WriteFile("/tmp/render/1.png", []byte("y"), 0644))
		require.NoError(t, fs.WriteFile("/tmp/other.png", []byte("z"), 0644))

		require.NoError(t, fs.RemoveAll("/tmp/render"))
		assert.False(t, fs.Exists("/tmp/render/0.png"))
		assert.False(t, fs.Exists("/tmp/render"))
		assert.True(t, fs.Exists("/tmp/other.png"))
	})

	t.Run("remove missing path errors", func(t *testing.T) {
		t.Parallel()
		fs := NewMemoryFileSystem()
		assert.Error(t, fs.Remove("/ghost"))
	})
}

func TestOSFileSystem(t *testing.T) {
	t.Parallel()
	fs := OSFileSystem{}
	dir := t.TempDir()

	path := filepath.Join(dir, "labels", "0.txt")
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fs.WriteFile(path, []byte("first\n"), 0644))
	require.NoError(t, fs.AppendFile(path, []byte("second\n"), 0644))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))

	dst := filepath.Join(dir, "copy.txt")
	require.NoError(t, fs.CopyFile(path, dst))
	assert.True(t, fs.Exists(dst))

	entries, err := fs.ReadDir(filepath.Join(dir, "labels"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0.txt", entries[0].Name())

	require.NoError(t, fs.RemoveAll(filepath.Join(dir, "labels")))
	assert.False(t, fs.Exists(path))
}
