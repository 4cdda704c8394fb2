package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "index", "records-000")

	require.NoError(t, fs.Write(context.Background(), path, []byte("line one\n")))

	data, err := fs.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "line one\n", string(data))
}

func TestWrite_CreatesParentDirs(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "a", "b", "c", "file")

	require.NoError(t, fs.Write(context.Background(), path, []byte("x")))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWrite_Overwrites(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "file")

	require.NoError(t, fs.Write(context.Background(), path, []byte("old")))
	require.NoError(t, fs.Write(context.Background(), path, []byte("new")))

	data, err := fs.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExists(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "file")

	ok, err := fs.Exists(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Write(context.Background(), path, []byte("x")))

	ok, err = fs.Exists(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemove(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, fs.Write(context.Background(), path, []byte("x")))

	require.NoError(t, fs.Remove(context.Background(), path))

	ok, err := fs.Exists(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemove_MissingFileIsNotAnError(t *testing.T) {
	fs := New()
	assert.NoError(t, fs.Remove(context.Background(), filepath.Join(t.TempDir(), "absent")))
}

func TestMkdirAll(t *testing.T) {
	fs := New()
	dir := filepath.Join(t.TempDir(), "x", "y")

	require.NoError(t, fs.MkdirAll(context.Background(), dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCancelledContext(t *testing.T) {
	fs := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Read(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)

	err = fs.Write(ctx, "anything", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
