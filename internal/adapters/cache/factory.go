package cache

import (
	"fmt"
	"time"

	"cvrp-optimizer/internal/platform/config"
	"cvrp-optimizer/internal/ports"
)

// New builds the MatrixCache backend selected by cfg.Backend.
func New(cfg config.CacheConfig) (ports.MatrixCache, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second

	switch cfg.Backend {
	case "", "file":
		dir := cfg.Directory
		if dir == "" {
			dir = "./cache"
		}
		return NewFileCache(dir, ttl)
	case "memory":
		return NewMemoryCache(ttl), nil
	case "redis":
		return NewRedisCache(cfg.RedisAddr, ttl)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}
