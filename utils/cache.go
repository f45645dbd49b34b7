package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = time.Hour
	cacheOpTimeout  = 2 * time.Second
)

// RedisCache stores byte payloads in Redis. Errors are logged and treated as misses.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps client. A nil client yields a nil cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	if client == nil {
		return nil
	}
	return &RedisCache{client: client}
}

// Get returns cached bytes for a key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && Sugar != nil {
			Sugar.Debugf("cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// Set stores bytes with ttl, falling back to one hour when ttl is not positive.
func (c *RedisCache) Set(ctx context.Context, key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil && Sugar != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}
