// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"flight-concierge/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis connection used as the flight-offer cache.
// Cached entries are short-lived JSON blobs, so the wrapper only exposes the
// string commands the cache layer needs.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis opens a connection pool against the configured Redis instance.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping verifies the connection is alive.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Get returns the cached value, or redis.Nil as the error on a miss.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set stores a value with the given TTL. A zero expiration keeps it forever.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}
