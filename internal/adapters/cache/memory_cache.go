package cache

import (
	"context"
	"sync"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// MemoryCache is a process-local, lock-protected matrix cache. Useful for
// tests and for single-run CLI invocations where persistence across
// processes is not needed.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.MatrixCacheEntry
	ttl     time.Duration
}

var _ ports.MatrixCache = (*MemoryCache)(nil)

// NewMemoryCache builds an empty MemoryCache with the given TTL (zero means
// entries never expire).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.MatrixCacheEntry), ttl: ttl}
}

func (c *MemoryCache) Get(ctx context.Context, key domain.MatrixCacheKey) (*domain.MatrixCacheEntry, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key.Hash]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if entry.Stale(time.Now(), c.ttl) {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, entry domain.MatrixCacheEntry) error {
	c.mu.Lock()
	c.entries[entry.Key.Hash] = entry
	c.mu.Unlock()
	return nil
}
