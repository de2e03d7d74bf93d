package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withClock lets a test move the store's clock
func withClock(store *InMemoryIdempotencyStore) *time.Time {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return &now
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := withClock(store)
	ctx := context.Background()

	t.Run("marks a new key", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "payment:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("rejects a repeated key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "payment:b", time.Hour)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "payment:b", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("accepts a key again after expiry", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "payment:c", time.Minute)
		require.NoError(t, err)

		*now = now.Add(2 * time.Minute)

		isNew, err := store.MarkProcessed(ctx, "payment:c", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := withClock(store)
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "payment:x", time.Minute)
	require.NoError(t, err)
	processed, err = store.IsProcessed(ctx, "payment:x")
	require.NoError(t, err)
	assert.True(t, processed)

	*now = now.Add(time.Minute)
	processed, err = store.IsProcessed(ctx, "payment:x")
	require.NoError(t, err)
	assert.False(t, processed, "expired key")
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "payment:rollback", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "payment:rollback"))

	isNew, err := store.MarkProcessed(ctx, "payment:rollback", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "released key can be marked again")

	assert.NoError(t, store.Release(ctx, "never-marked"))
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	now := withClock(store)
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short-1", time.Second)
	_, _ = store.MarkProcessed(ctx, "short-2", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	*now = now.Add(time.Minute)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	processed, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 100

	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "concurrent", time.Hour)
			results <- err == nil && isNew
		}()
	}

	won := 0
	for i := 0; i < workers; i++ {
		if <-results {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one caller marks the key")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
