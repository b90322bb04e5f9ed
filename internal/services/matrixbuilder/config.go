// Package matrixbuilder turns an ordered list of locations into a complete
// distance/duration matrix, choosing the cheapest strategy that fits the
// location count and caching the result.
package matrixbuilder

// Config tunes strategy selection and the bounded worker pool.
type Config struct {
	// SingleTableThreshold (S1) is the largest N served by a single table
	// request.
	SingleTableThreshold int
	// QuadraticTilingThreshold (S2) is the largest N served by chunked
	// tiling before falling back to pairwise queries.
	QuadraticTilingThreshold int
	// ChunkSize (C) is the source/destination chunk size used in the
	// quadratic tiling strategy.
	ChunkSize int
	// PoolSize bounds the number of concurrent network requests (W_net).
	PoolSize int
	// MaxChunkRetries (K) bounds retries of a transiently failing chunk.
	MaxChunkRetries int
}

// DefaultConfig returns the thresholds named in the component design: S1≈30,
// S2≈500, C≈80, pool≈5, K=3.
func DefaultConfig() Config {
	return Config{
		SingleTableThreshold:     30,
		QuadraticTilingThreshold: 500,
		ChunkSize:                80,
		PoolSize:                 5,
		MaxChunkRetries:          3,
	}
}
