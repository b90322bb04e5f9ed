package routing

import (
	"context"
	"fmt"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// MockPair is one fixed (origin, destination) -> (meters, seconds) fact
// fed to MockGateway, keyed by coordinate rather than by address string
// since this domain has no geocoding step.
type MockPair struct {
	From, To        domain.Coordinate
	Meters, Seconds int64
}

// MockGateway is a fixture gateway for tests: every pair it was not told
// about explicitly falls back to haversine, so tests only need to specify
// the distances that matter to the assertion.
type MockGateway struct {
	pairs    map[[2]domain.Coordinate]MockPair
	fallback *HaversineGateway
}

// NewMockGateway builds a MockGateway from a fixed set of pairs.
func NewMockGateway(pairs []MockPair) *MockGateway {
	m := make(map[[2]domain.Coordinate]MockPair, len(pairs))
	for _, p := range pairs {
		m[[2]domain.Coordinate{p.From, p.To}] = p
	}
	return &MockGateway{pairs: m, fallback: NewHaversineGateway()}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) MaxLocationsPerCall() int { return 0 }

func (g *MockGateway) BuildMatrix(ctx context.Context, req ports.MatrixRequest) (*domain.Matrix, error) {
	m := domain.NewMatrix(req.Locations)
	for i, a := range req.Locations {
		for j, b := range req.Locations {
			if i == j {
				continue
			}
			if p, ok := g.pairs[[2]domain.Coordinate{a, b}]; ok {
				m.Set(i, j, p.Meters, p.Seconds, false)
				continue
			}
			dist, dur := FillCell(a, b)
			m.Set(i, j, dist, dur, true)
		}
	}
	return m, nil
}

// Lookup exposes a single fixed pair, mainly for test assertions.
func (g *MockGateway) Lookup(a, b domain.Coordinate) (MockPair, error) {
	p, ok := g.pairs[[2]domain.Coordinate{a, b}]
	if !ok {
		return MockPair{}, fmt.Errorf("mock gateway: no fixed pair for %v -> %v", a, b)
	}
	return p, nil
}
