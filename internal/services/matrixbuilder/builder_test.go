package matrixbuilder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/adapters/cache"
	"cvrp-optimizer/internal/adapters/routing"
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

func gridLocations(n int) []domain.Coordinate {
	locs := make([]domain.Coordinate, n)
	for i := 0; i < n; i++ {
		locs[i] = domain.Coordinate{Lat: float64(i) * 0.01, Lon: float64(i) * 0.01}
	}
	return locs
}

func TestBuildSingleTableStrategy(t *testing.T) {
	locs := gridLocations(5)
	gw := routing.NewMockGateway(nil)
	b := New(DefaultConfig(), gw, cache.NewMemoryCache(time.Minute), nil)

	m, err := b.Build(context.Background(), locs, -1, "car")
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 5, m.N)
	assert.Equal(t, m.N*m.N-m.N, m.DegradedCount(), "mock gateway with no fixed pairs answers every off-diagonal cell by haversine, so every such cell is degraded")
}

func TestBuildQuadraticTilingStrategy(t *testing.T) {
	locs := gridLocations(60)
	gw := routing.NewMockGateway(nil)
	cfg := DefaultConfig()
	cfg.SingleTableThreshold = 30
	cfg.QuadraticTilingThreshold = 500
	cfg.ChunkSize = 10

	b := New(cfg, gw, nil, nil)
	m, err := b.Build(context.Background(), locs, -1, "car")
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 60, m.N)

	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if i == j {
				continue
			}
			assert.Greater(t, m.Distance(i, j), int64(0))
		}
	}
}

func TestBuildPairwiseStrategy(t *testing.T) {
	locs := gridLocations(4)
	gw := routing.NewMockGateway(nil)
	cfg := DefaultConfig()
	cfg.SingleTableThreshold = 0
	cfg.QuadraticTilingThreshold = 0

	b := New(cfg, gw, nil, nil)
	m, err := b.Build(context.Background(), locs, -1, "car")
	require.NoError(t, err)
	require.NoError(t, m.Validate())
}

func TestBuildUsesCacheOnSecondCall(t *testing.T) {
	locs := gridLocations(5)
	calls := 0
	gw := &countingGateway{inner: routing.NewMockGateway(nil), calls: &calls}
	memCache := cache.NewMemoryCache(time.Minute)
	b := New(DefaultConfig(), gw, memCache, nil)

	ctx := context.Background()
	_, err := b.Build(ctx, locs, -1, "car")
	require.NoError(t, err)
	firstCalls := calls

	_, err = b.Build(ctx, locs, -1, "car")
	require.NoError(t, err)
	assert.Equal(t, firstCalls, calls, "second build should be served entirely from cache")
}

func TestBuildDegradesOnProviderUnavailable(t *testing.T) {
	locs := gridLocations(5)
	gw := &alwaysUnavailableGateway{}
	cfg := DefaultConfig()
	cfg.MaxChunkRetries = 1

	b := New(cfg, gw, nil, nil)
	m, err := b.Build(context.Background(), locs, -1, "car")
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, m.N*m.N-m.N, m.DegradedCount(), "every off-diagonal cell should degrade to haversine")
}

// countingGateway wraps another gateway and counts BuildMatrix calls.
type countingGateway struct {
	inner ports.RoutingGateway
	calls *int
}

func (g *countingGateway) Name() string             { return g.inner.Name() }
func (g *countingGateway) MaxLocationsPerCall() int  { return g.inner.MaxLocationsPerCall() }
func (g *countingGateway) BuildMatrix(ctx context.Context, req ports.MatrixRequest) (*domain.Matrix, error) {
	*g.calls++
	return g.inner.BuildMatrix(ctx, req)
}

// alwaysUnavailableGateway simulates a provider that never answers, forcing
// every cell through the haversine degrade path.
type alwaysUnavailableGateway struct{}

func (g *alwaysUnavailableGateway) Name() string            { return "always-down" }
func (g *alwaysUnavailableGateway) MaxLocationsPerCall() int { return 0 }
func (g *alwaysUnavailableGateway) BuildMatrix(ctx context.Context, req ports.MatrixRequest) (*domain.Matrix, error) {
	return nil, domain.ErrProviderUnavailable
}
