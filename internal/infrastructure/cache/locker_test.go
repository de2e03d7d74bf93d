package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mandibooks/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "invoice:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.locks, "idle keys are forgotten")
}

func TestLocalLocker_DistinctKeysDoNotBlock(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "invoice:a", time.Second)
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	releaseB, err := locker.Acquire(ctx, "invoice:b", time.Second)
	require.NoError(t, err)
	releaseB()
}

func TestLocalLocker_ContextEndsWhileWaiting(t *testing.T) {
	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), "invoice:1", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "invoice:1", time.Second)
	assert.ErrorIs(t, err, ErrLockNotObtained)

	release()
	release() // a second call is a no-op

	again, err := locker.Acquire(context.Background(), "invoice:1", time.Second)
	require.NoError(t, err)
	again()
}

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("redis disabled gives in-process backends", func(t *testing.T) {
		backends, err := NewFactory(config.RedisConfig{}).Create(ctx)
		require.NoError(t, err)
		defer backends.Close()

		assert.False(t, backends.Distributed())
		assert.IsType(t, &InMemoryIdempotencyStore{}, backends.Idempotency)
		assert.IsType(t, &LocalLocker{}, backends.Locker)
	})

	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back", func(t *testing.T) {
		backends, err := NewFactory(unreachable, WithLogger(zap.NewNop())).Create(ctx)
		require.NoError(t, err)
		defer backends.Close()
		assert.False(t, backends.Distributed())
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		_, err := NewFactory(unreachable, WithInMemoryFallback(false)).Create(ctx)
		assert.ErrorContains(t, err, "redis required")
	})
}
