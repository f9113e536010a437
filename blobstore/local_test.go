package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "snapshots/index-001.db"
	data := []byte("hello world, this is a test snapshot")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	err = w.Close()
	require.NoError(t, err)

	// Verify file exists on disk
	expectedPath := filepath.Join(tmpDir, "snapshots", "index-001.db")
	_, err = os.Stat(expectedPath)
	require.NoError(t, err)

	// 2. Open and read back
	r, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, data, content)

	// 3. List
	blobName2 := "snapshots/index-002.db"
	w2, err := store.Create(ctx, blobName2)
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{blobName, blobName2}, names)

	// 4. Delete
	err = store.Delete(ctx, blobName)
	require.NoError(t, err)

	namesAfter, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{blobName2}, namesAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error
	require.NoError(t, store.Delete(ctx, blobName))
}

func TestLocalStore_PartialWriteNotVisible(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	w, err := store.Create(ctx, "partial.db")
	require.NoError(t, err)
	_, err = w.Write([]byte("incomplete"))
	require.NoError(t, err)

	// The blob must not be visible until Close
	_, err = store.Open(ctx, "partial.db")
	require.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, w.Close())

	r, err := store.Open(ctx, "partial.db")
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "incomplete", string(content))
}

func TestLocalStore_ListEmptyRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestLocalStore_LargeBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := strings.Repeat("0123456789abcdef", 64*1024) // 1 MiB

	w, err := store.Create(ctx, "large.db")
	require.NoError(t, err)
	_, err = io.Copy(w, strings.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := store.Open(ctx, "large.db")
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, len(data), len(content))
}
