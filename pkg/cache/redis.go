package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
)

// RedisInvalidator deletes cached view keys by pattern after mutations.
type RedisInvalidator struct {
	client *redis.Client
}

// NewRedisInvalidator connects to Redis and verifies the connection.
func NewRedisInvalidator(ctx context.Context, redisURL string) (*RedisInvalidator, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisInvalidator{client: client}, nil
}

var _ ports.CacheInvalidator = (*RedisInvalidator)(nil)

// Invalidate deletes all keys matching the pattern. SCAN is used instead of
// KEYS so a large keyspace never blocks the server.
func (r *RedisInvalidator) Invalidate(ctx context.Context, keyPattern string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	iter := r.client.Scan(ctx, 0, keyPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached keys: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached keys: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached keys: %w", err)
		}
	}

	logger.Debug("cache invalidated", slog.String("pattern", keyPattern))
	return nil
}

// Close releases the Redis connection.
func (r *RedisInvalidator) Close() error {
	return r.client.Close()
}
