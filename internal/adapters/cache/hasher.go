// Package cache implements ports.MatrixCache: file-based, in-memory, and
// Redis-backed storage for built matrices, keyed by a canonical content hash.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"cvrp-optimizer/internal/domain"
)

// BuildKey derives the canonical MatrixCacheKey for a matrix build request:
// same provider, same ordered coordinates (rounded to 6 decimals), same
// departure time and costing profile always hash to the same key.
func BuildKey(providerID string, locations []domain.Coordinate, departureSecond int, costingProfile string) domain.MatrixCacheKey {
	return domain.MatrixCacheKey{
		ProviderID:      providerID,
		Hash:            canonicalHash(providerID, locations, departureSecond, costingProfile),
		CostingProfile:  costingProfile,
		DepartureSecond: departureSecond,
	}
}

func canonicalHash(providerID string, locations []domain.Coordinate, departureSecond int, costingProfile string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "g:%s;p:%s;d:%d;n:%d;", providerID, costingProfile, departureSecond, len(locations))
	for i, c := range locations {
		lat, lon := c.RoundedKey()
		fmt.Fprintf(&b, "%d:%d,%d;", i, lat, lon)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// FileName returns the on-disk file name for a cache key, per the
// "{hex_hash}.bin" persisted layout.
func FileName(key domain.MatrixCacheKey) string {
	return key.Hash + ".bin"
}
