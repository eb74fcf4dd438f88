package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewLocker returns a Redis locker when Redis is enabled and reachable,
// otherwise an in-memory one. The returned close func releases the client.
func NewLocker(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (Locker, func() error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }
	if !cfg.Enabled {
		logger.Info("redis disabled, using in-memory locks")
		return NewInMemoryLocker(), noop
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory locks; scheduled jobs may run once per replica",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryLocker(), noop
	}
	logger.Info("using redis locks", zap.String("addr", cfg.Addr()))
	return NewRedisLocker(client, ""), client.Close
}
