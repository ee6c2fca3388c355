package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreSetGet(t *testing.T) {
	store := NewInMemoryStore()
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	_, found, err := store.Get(ctx, "FR-2024-001")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "FR-2024-001", "doc_abc", time.Hour))

	value, found, err := store.Get(ctx, "FR-2024-001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "doc_abc", value)
}

func TestInMemoryStoreExpiry(t *testing.T) {
	store := NewInMemoryStore()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", "v", -time.Second))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "expired entry must read as absent")
}

func TestInMemoryStoreOverwrite(t *testing.T) {
	store := NewInMemoryStore()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", "first", time.Hour))
	require.NoError(t, store.Set(ctx, "k", "second", time.Hour))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", value)
}

func TestInMemoryStoreCleanup(t *testing.T) {
	store := NewInMemoryStore()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stale", "v", -time.Second))
	require.NoError(t, store.Set(ctx, "fresh", "v", time.Hour))
	require.Equal(t, 2, store.Size())

	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryStoreCloseIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
