package ports

import (
	"context"

	"cvrp-optimizer/internal/domain"
)

// MatrixCache persists and retrieves built matrices keyed by their content
// hash, so identical (provider, coordinates, departure time, profile)
// requests never re-hit the network. Implementations may be file-backed,
// in-memory, or Redis-backed; all must be safe for concurrent use.
type MatrixCache interface {
	Get(ctx context.Context, key domain.MatrixCacheKey) (*domain.MatrixCacheEntry, bool, error)
	Put(ctx context.Context, entry domain.MatrixCacheEntry) error
}
