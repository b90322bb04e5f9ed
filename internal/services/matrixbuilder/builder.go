package matrixbuilder

import (
	"context"
	"errors"
	"sync"
	"time"

	"cvrp-optimizer/internal/adapters/cache"
	"cvrp-optimizer/internal/adapters/routing"
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/platform/logger"
	"cvrp-optimizer/internal/platform/metrics"
	"cvrp-optimizer/internal/platform/obs"
	"cvrp-optimizer/internal/ports"
)

// Builder produces a complete N×N matrix for a location list, selecting
// the cheapest strategy for N, caching results, and degrading to haversine
// for any cell that could not be resolved by the primary gateway.
type Builder struct {
	cfg      Config
	gateway  ports.RoutingGateway
	cache    ports.MatrixCache
	reporter ports.ProgressReporter
}

// New builds a Builder. reporter may be nil, in which case a no-op reporter
// is used.
func New(cfg Config, gateway ports.RoutingGateway, matrixCache ports.MatrixCache, reporter ports.ProgressReporter) *Builder {
	if reporter == nil {
		reporter = ports.NoopReporter{}
	}
	return &Builder{cfg: cfg, gateway: gateway, cache: matrixCache, reporter: reporter}
}

// Build returns the matrix for locations, checking the cache first and
// writing a fresh build back to it on a miss.
func (b *Builder) Build(ctx context.Context, locations []domain.Coordinate, departureSecond int, costingProfile string) (m *domain.Matrix, err error) {
	done := obs.Time(ctx, "matrix_builder.build")
	defer func() { done(&err) }()

	key := cache.BuildKey(b.gateway.Name(), locations, departureSecond, costingProfile)

	if b.cache != nil {
		if entry, ok, cerr := b.cache.Get(ctx, key); cerr == nil && ok {
			metrics.Default().MatrixCacheHitsTotal.WithLabelValues("hit").Inc()
			entry.Matrix.Locations = locations
			return entry.Matrix, nil
		}
	}
	metrics.Default().MatrixCacheHitsTotal.WithLabelValues("miss").Inc()

	n := len(locations)
	b.reporter.Stage("matrix_builder")

	state := newBuildState(locations)

	var strategy string
	switch {
	case n <= b.cfg.SingleTableThreshold:
		strategy = "single_table"
		b.buildSingleTable(ctx, state)
	case n <= b.cfg.QuadraticTilingThreshold:
		strategy = "quadratic_tiling"
		b.buildQuadraticTiling(ctx, state)
	default:
		strategy = "pairwise"
		b.buildPairwise(ctx, state)
	}

	result := state.finalize()
	metrics.Default().MatrixDegradedCells.WithLabelValues(b.gateway.Name()).Set(float64(result.DegradedCount()))
	b.reporter.Done(strategy)

	logger.Log.Info("matrix build complete",
		"strategy", strategy, "n", n, "degraded_cells", result.DegradedCount())

	if b.cache != nil {
		_ = b.cache.Put(ctx, domain.MatrixCacheEntry{
			Key:        key,
			Matrix:     result,
			BuiltAt:    time.Now(),
			ProviderID: b.gateway.Name(),
		})
	}

	return result, nil
}

// buildState accumulates a matrix under construction along with which
// cells have actually been resolved by a gateway (as opposed to still
// reading their zero-value default), so the final degraded-fill pass can
// tell "legitimately zero" apart from "never answered".
type buildState struct {
	mu        sync.Mutex
	matrix    *domain.Matrix
	filled    []bool
	locations []domain.Coordinate
}

func newBuildState(locations []domain.Coordinate) *buildState {
	return &buildState{
		matrix:    domain.NewMatrix(locations),
		filled:    make([]bool, len(locations)*len(locations)),
		locations: locations,
	}
}

func (s *buildState) set(i, j int, distanceM, durationS int64, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrix.Set(i, j, distanceM, durationS, degraded)
	s.filled[i*s.matrix.N+j] = true
}

// finalize zero-fills the diagonal, patches every unfilled cell with the
// haversine fallback, and returns the completed matrix.
func (s *buildState) finalize() *domain.Matrix {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.matrix.N
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || s.filled[i*n+j] {
				continue
			}
			dist, dur := routing.FillCell(s.locations[i], s.locations[j])
			s.matrix.Set(i, j, dist, dur, true)
		}
	}
	s.matrix.ZeroDiagonal()
	return s.matrix
}

func (b *Builder) buildSingleTable(ctx context.Context, state *buildState) {
	req := ports.MatrixRequest{Locations: state.locations, DepartureSecond: -1}
	m, err := b.gateway.BuildMatrix(ctx, req)
	if err != nil && !errors.Is(err, domain.ErrPartialMatrix) {
		logger.Log.Warn("single-table matrix request failed, falling back to haversine", "err", err)
		return
	}
	copyFilled(state, m)
}

// copyFilled transfers every non-degraded cell of src into state, marking
// it filled. Cells src itself flagged degraded are left unfilled so the
// caller's own haversine fallback (identical math) fills them uniformly.
func copyFilled(state *buildState, src *domain.Matrix) {
	if src == nil {
		return
	}
	n := src.N
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			k := i*n + j
			if src.Degraded[k] {
				continue
			}
			state.set(i, j, src.DistanceM[k], src.DurationS[k], false)
		}
	}
}

func (b *Builder) buildQuadraticTiling(ctx context.Context, state *buildState) {
	plan := buildChunkPlan(len(state.locations), b.cfg.ChunkSize)
	pool := newWorkerPool(b.cfg.PoolSize)

	var completed int64
	var progressMu sync.Mutex

	pool.run(ctx, len(plan), func(ctx context.Context, idx int) {
		pair := plan[idx]
		b.resolveChunk(ctx, state, pair, b.cfg.ChunkSize, 0)

		progressMu.Lock()
		completed++
		b.reporter.Progress(int(completed), len(plan))
		progressMu.Unlock()
	})
}

// resolveChunk fetches one (sources × destinations) block. On
// RequestTooLarge it halves the chunk and recurses; on repeated
// ProviderUnavailable it leaves the block unfilled so finalize()'s
// haversine pass covers it.
func (b *Builder) resolveChunk(ctx context.Context, state *buildState, pair chunkPair, chunkSize, depth int) {
	if depth > 4 || len(pair.Sources) == 0 || len(pair.Destinations) == 0 {
		return
	}

	union, local := unionIndices(pair.Sources, pair.Destinations)
	locs := make([]domain.Coordinate, len(union))
	for i, g := range union {
		locs[i] = state.locations[g]
	}

	var m *domain.Matrix
	var err error
	for attempt := 0; attempt <= b.cfg.MaxChunkRetries; attempt++ {
		m, err = b.gateway.BuildMatrix(ctx, ports.MatrixRequest{Locations: locs, DepartureSecond: -1})
		if err == nil || errors.Is(err, domain.ErrPartialMatrix) {
			break
		}
		if errors.Is(err, domain.ErrRequestTooLarge) {
			half := chunkSize / 2
			if half < 1 {
				half = 1
			}
			for _, sub := range splitChunk(pair, half) {
				b.resolveChunk(ctx, state, sub, half, depth+1)
			}
			return
		}
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			break
		}
	}
	if err != nil && !errors.Is(err, domain.ErrPartialMatrix) {
		logger.Log.Warn("chunk request failed after retries, degrading to haversine",
			"sources", len(pair.Sources), "destinations", len(pair.Destinations), "err", err)
		return
	}
	if m == nil {
		return
	}

	for _, gi := range pair.Sources {
		li := local[gi]
		for _, gj := range pair.Destinations {
			if gi == gj {
				continue
			}
			lj := local[gj]
			k := li*m.N + lj
			if m.Degraded[k] {
				continue
			}
			state.set(gi, gj, m.DistanceM[k], m.DurationS[k], false)
		}
	}
}

func splitChunk(pair chunkPair, half int) []chunkPair {
	srcChunks := chunkIndices(len(pair.Sources), half)
	dstChunks := chunkIndices(len(pair.Destinations), half)
	out := make([]chunkPair, 0, len(srcChunks)*len(dstChunks))
	for _, sc := range srcChunks {
		srcIdx := make([]int, len(sc))
		for i, li := range sc {
			srcIdx[i] = pair.Sources[li]
		}
		for _, dc := range dstChunks {
			dstIdx := make([]int, len(dc))
			for i, li := range dc {
				dstIdx[i] = pair.Destinations[li]
			}
			out = append(out, chunkPair{Sources: srcIdx, Destinations: dstIdx})
		}
	}
	return out
}

func (b *Builder) buildPairwise(ctx context.Context, state *buildState) {
	n := len(state.locations)
	type pair struct{ i, j int }
	pairs := make([]pair, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				pairs = append(pairs, pair{i, j})
			}
		}
	}

	pool := newWorkerPool(b.cfg.PoolSize)
	var completed int64
	var progressMu sync.Mutex

	pool.run(ctx, len(pairs), func(ctx context.Context, idx int) {
		p := pairs[idx]
		req := ports.MatrixRequest{
			Locations:       []domain.Coordinate{state.locations[p.i], state.locations[p.j]},
			DepartureSecond: -1,
		}

		var m *domain.Matrix
		var err error
		for attempt := 0; attempt <= b.cfg.MaxChunkRetries; attempt++ {
			m, err = b.gateway.BuildMatrix(ctx, req)
			if err == nil || !errors.Is(err, domain.ErrProviderUnavailable) {
				break
			}
		}
		if err == nil && m != nil && !m.Degraded[1] {
			state.set(p.i, p.j, m.Distance(0, 1), m.Duration(0, 1), false)
		}

		progressMu.Lock()
		completed++
		b.reporter.Progress(int(completed), len(pairs))
		progressMu.Unlock()
	})
}
