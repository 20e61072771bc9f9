package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds short-lived counters. Diagnosis results are never cached.
// Implementations must be safe for concurrent use.
type Cache interface {
	Ping(ctx context.Context) error
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
	Close() error
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is the in-process Cache used when no Redis URL is configured.
// Counters are local to one server instance.
type MemoryCache struct {
	mu       sync.Mutex
	counters map[string]counter
	now      func() time.Time
}

type counter struct {
	value   int64
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{counters: make(map[string]counter), now: time.Now}
}

func (c *MemoryCache) Ping(_ context.Context) error { return nil }

// IncrWithExpiry increments key and resets its expiry, like the Redis
// INCR + EXPIRE pair.
func (c *MemoryCache) IncrWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)

	ctr := c.counters[key]
	ctr.value++
	ctr.expires = now.Add(expiry)
	c.counters[key] = ctr
	return ctr.value, nil
}

func (c *MemoryCache) Close() error { return nil }

// sweep drops expired counters. Caller holds c.mu.
func (c *MemoryCache) sweep(now time.Time) {
	for k, ctr := range c.counters {
		if !now.Before(ctr.expires) {
			delete(c.counters, k)
		}
	}
}
