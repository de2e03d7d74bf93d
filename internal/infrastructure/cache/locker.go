package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained is returned when a lock stays held by someone else
// until the caller's context ends.
var ErrLockNotObtained = errors.New("lock not obtained")

// LocalLocker serializes work on a key within one process
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch      chan struct{}
	waiters int
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Acquire waits for the key's slot. The ttl is ignored; a local lock lives
// until released.
func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.waiters++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.forget(key, kl)
		return nil, fmt.Errorf("%w: %s: %v", ErrLockNotObtained, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.forget(key, kl)
		})
	}, nil
}

func (l *LocalLocker) forget(key string, kl *keyLock) {
	l.mu.Lock()
	kl.waiters--
	if kl.waiters == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// RedisLocker takes locks in Redis so they hold across server instances
type RedisLocker struct {
	client  *redislock.Client
	prefix  string
	backoff time.Duration
}

// NewRedisLocker creates a locker on an existing Redis client
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rdb),
		prefix:  "mandi:lock:",
		backoff: 50 * time.Millisecond,
	}
}

// Acquire retries until the lock is obtained or ctx ends. The lock expires
// after ttl even if the holder never releases it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, l.prefix+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrLockNotObtained, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func() {
		// a context that already ended must not leave the key locked
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lock.Release(ctx)
	}, nil
}

var (
	_ shared.Locker = (*LocalLocker)(nil)
	_ shared.Locker = (*RedisLocker)(nil)
)
