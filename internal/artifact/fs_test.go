package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestFSStoreUploadAndRead(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	dir := writeTree(t, map[string]string{"bin/app": "binary bytes"})
	require.NoError(t, store.Upload(ctx, "bin-ubuntu", dir))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bin-ubuntu"}, names)

	files, err := store.Files(ctx, "bin-ubuntu")
	require.NoError(t, err)
	assert.Equal(t, []string{"bin/app"}, files)

	rc, err := store.Open(ctx, "bin-ubuntu", "bin/app")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "binary bytes", string(data))
}

func TestFSStoreUploadOverwrites(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "bin-win", writeTree(t, map[string]string{
		"app.exe":   "v1",
		"stale.dll": "old",
	})))
	require.NoError(t, store.Upload(ctx, "bin-win", writeTree(t, map[string]string{
		"app.exe": "v2",
	})))

	// the stale file from the first upload is gone
	files, err := store.Files(ctx, "bin-win")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.exe"}, files)

	rc, err := store.Open(ctx, "bin-win", "app.exe")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestFSStoreNotFound(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Files(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Upload(ctx, "bin-mac", writeTree(t, map[string]string{"bin/app": "x"})))
	_, err = store.Open(ctx, "bin-mac", "bin/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStoreRejectsBadNamesAndPaths(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "", t.TempDir()))
	assert.Error(t, store.Upload(ctx, "a/b", t.TempDir()))
	assert.Error(t, store.Upload(ctx, "..", t.TempDir()))

	require.NoError(t, store.Upload(ctx, "bin-ubuntu", writeTree(t, map[string]string{"bin/app": "x"})))
	_, err := store.Open(ctx, "bin-ubuntu", "../../etc/passwd")
	assert.Error(t, err)
}

func TestFSStoreListEmpty(t *testing.T) {
	store := NewFSStore(filepath.Join(t.TempDir(), "never-created"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
