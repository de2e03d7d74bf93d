package cache

import (
	"context"
	"fmt"

	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends pairs the idempotency store and locker used by the payment
// service. Both are Redis-backed or both are in-process.
type Backends struct {
	Idempotency shared.IdempotencyStore
	Locker      shared.Locker
	redis       *redis.Client
}

// Distributed reports whether the backends are shared through Redis
func (b *Backends) Distributed() bool {
	return b.redis != nil
}

// Close releases the store and the Redis connection
func (b *Backends) Close() error {
	err := b.Idempotency.Close()
	if b.redis != nil {
		if cerr := b.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Factory builds Backends from configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-process backends instead of failing startup. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InMemory returns in-process backends
func (f *Factory) InMemory() *Backends {
	return &Backends{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewLocalLocker(),
	}
}

// Create returns Redis backends when Redis is enabled and reachable
func (f *Factory) Create(ctx context.Context) (*Backends, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-process idempotency store and locks")
		return f.InMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for payment idempotency but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-process idempotency store and locks. "+
			"Retries reaching different instances may apply twice.",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return f.InMemory(), nil
	}

	f.logger.Info("Using Redis idempotency store and locks", zap.String("addr", f.redisConfig.Addr()))
	return &Backends{
		Idempotency: NewRedisIdempotencyStore(client, ""),
		Locker:      NewRedisLocker(client),
		redis:       client,
	}, nil
}
