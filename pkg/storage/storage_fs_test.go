package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilesystemStorage(t *testing.T) (*FilesystemStorage, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewFilesystemStorage(dir)
	require.NoError(t, err)
	return storage, dir
}

func TestFilesystemStorage_Write(t *testing.T) {
	ctx := context.Background()
	storage, dir := newTestFilesystemStorage(t)

	err := storage.Write(ctx, "com.foomo.app/1.0.0/app.tar.gz", strings.NewReader("test-data"), "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "com.foomo.app", "1.0.0", "app.tar.gz"))
	require.NoError(t, err)
	assert.Equal(t, []byte("test-data"), data)

	data, err = storage.Read(ctx, "com.foomo.app/1.0.0/app.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, []byte("test-data"), data)
}

func TestFilesystemStorage_Write_Overwrite(t *testing.T) {
	ctx := context.Background()
	storage, dir := newTestFilesystemStorage(t)

	require.NoError(t, storage.Write(ctx, "a.b/1/f", strings.NewReader("original"), ""))
	require.NoError(t, storage.Write(ctx, "a.b/1/f", strings.NewReader("updated"), ""))

	data, err := storage.Read(ctx, "a.b/1/f")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), data)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Join(dir, "a.b", "1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFilesystemStorage_Write_InvalidKey(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestFilesystemStorage(t)

	for _, key := range []string{"", ".", "..", "../escape", "a/../../escape"} {
		err := storage.Write(ctx, key, strings.NewReader("x"), "")
		assert.Error(t, err, key)
	}
}

func TestFilesystemStorage_Read_NotFound(t *testing.T) {
	storage, _ := newTestFilesystemStorage(t)

	_, err := storage.Read(context.Background(), "nonexistent-key")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestFilesystemStorage(t)

	require.NoError(t, storage.Write(ctx, "a.b/1/f", strings.NewReader("test-data"), ""))
	require.NoError(t, storage.Delete(ctx, "a.b/1/f"))

	_, err := storage.Read(ctx, "a.b/1/f")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemStorage_Delete_NotFound(t *testing.T) {
	storage, _ := newTestFilesystemStorage(t)

	err := storage.Delete(context.Background(), "nonexistent-key")
	assert.NoError(t, err)
}

func TestNewFilesystemStorage_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "releases")
	_, err := NewFilesystemStorage(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
