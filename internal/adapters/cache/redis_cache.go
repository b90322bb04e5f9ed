package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// RedisCache stores matrix cache entries as the same binary payload the
// file cache writes to disk, keyed by the cache hash under a fixed prefix.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

var _ ports.MatrixCache = (*RedisCache)(nil)

// NewRedisCache connects to addr and verifies reachability before returning.
func NewRedisCache(addr string, defaultTTL time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, PoolSize: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis cache: ping failed: %w", err)
	}

	return &RedisCache{client: client, defaultTTL: defaultTTL}, nil
}

func redisKey(key domain.MatrixCacheKey) string {
	return "cvrp:matrix:" + key.Hash
}

func (c *RedisCache) Get(ctx context.Context, key domain.MatrixCacheKey) (*domain.MatrixCacheEntry, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, nil
	}

	entry, err := decodeEntry(bytes.NewReader(raw), key)
	if err != nil {
		return nil, false, nil
	}
	if entry.Stale(time.Now(), c.defaultTTL) {
		return nil, false, nil
	}
	return entry, true, nil
}

func (c *RedisCache) Put(ctx context.Context, entry domain.MatrixCacheEntry) error {
	var buf bytes.Buffer
	if err := encodeEntry(&buf, entry); err != nil {
		return fmt.Errorf("redis cache: encode entry: %w", err)
	}

	ttl := c.defaultTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return c.client.Set(ctx, redisKey(entry.Key), buf.Bytes(), ttl).Err()
}
