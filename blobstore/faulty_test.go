package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultyStore(t *testing.T) {
	ctx := context.Background()
	store := NewFaultyStore(NewMemoryStore())
	require.NoError(t, store.Put(ctx, "a/chunk_1", []byte("0123456789")))

	boom := errors.New("boom")
	store.AddRule("chunk_1", Fault{FailOnOpen: true, Err: boom})
	_, err := store.Open(ctx, "a/chunk_1")
	require.ErrorIs(t, err, boom)

	store.AddRule("chunk_1", Fault{FailAfterBytes: 4})
	b, err := store.Open(ctx, "a/chunk_1")
	require.NoError(t, err)
	_, isMappable := b.(Mappable)
	assert.False(t, isMappable)

	p := make([]byte, 4)
	_, err = b.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	_, err = b.ReadAt(ctx, p, 2)
	require.ErrorIs(t, err, errInjected)
	require.NoError(t, b.Close())

	store.AddRule("a/", Fault{FailOnPut: true, FailOnList: true, FailAfterBytes: -1})
	require.Error(t, store.Put(ctx, "a/chunk_2", nil))
	_, err = store.List(ctx, "a/")
	require.Error(t, err)
	assert.Equal(t, 4, store.Injected())

	store.ClearRules()
	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/chunk_1"}, names)
}
