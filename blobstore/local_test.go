package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Put a blob
	blobName := "run/chunk_0_1.bin"
	data := []byte("hello world, this is a test chunk blob")

	require.NoError(t, store.Put(ctx, blobName, data))

	// Verify file exists on disk
	_, err := os.Stat(filepath.Join(tmpDir, "run", "chunk_0_1.bin"))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. Zero-copy access
	m, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, b)

	// 4. List
	require.NoError(t, store.Put(ctx, "run/chunk_0_0.bin", []byte("x")))
	require.NoError(t, store.Put(ctx, "other.bin", []byte("y")))

	names, err := store.List(ctx, "run/")
	require.NoError(t, err)
	require.Equal(t, []string{"run/chunk_0_0.bin", blobName}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestLocalBlobStore_ReadPastEnd(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 8)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 2, n)
	require.Equal(t, "89", string(buf[:n]))

	n, err = blob.ReadAt(ctx, buf, 20)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 0, n)
}

func TestLocalBlobStore_Overwrite(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.bin", []byte("first")))
	require.NoError(t, store.Put(ctx, "a.bin", []byte("second")))

	data, err := ReadAll(ctx, store, "a.bin")
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a.bin"}, names)
}

func TestLocalBlobStore_NotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Open(context.Background(), "missing.bin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("abc")
	require.NoError(t, store.Put(ctx, "b", src))
	require.NoError(t, store.Put(ctx, "a", []byte("z")))
	src[0] = 'X' // stored copy must not change

	data, err := ReadAll(ctx, store, "b")
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Open(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}
