package routing

import (
	"context"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// averageUrbanSpeedMPS is the fixed ≈40 km/h average speed used to turn a
// haversine distance into a duration estimate.
const averageUrbanSpeedMPS = 40000.0 / 3600.0

// HaversineGateway implements ports.RoutingGateway with no network calls at
// all: great-circle distance, divided by a fixed average speed for
// duration. It is always available and is used as the last-resort fallback
// when every other gateway fails, and directly by tests.
type HaversineGateway struct{}

// NewHaversineGateway constructs the fallback gateway.
func NewHaversineGateway() *HaversineGateway { return &HaversineGateway{} }

func (g *HaversineGateway) Name() string { return "haversine" }

func (g *HaversineGateway) MaxLocationsPerCall() int { return 0 }

func (g *HaversineGateway) BuildMatrix(ctx context.Context, req ports.MatrixRequest) (*domain.Matrix, error) {
	m := domain.NewMatrix(req.Locations)
	for i, a := range req.Locations {
		for j, b := range req.Locations {
			if i == j {
				continue
			}
			dist := a.HaversineMeters(b)
			dur := dist / averageUrbanSpeedMPS
			m.Set(i, j, int64(dist+0.5), int64(dur+0.5), true)
		}
	}
	return m, nil
}

// FillCell computes a single haversine-derived cell, used by the matrix
// builder to patch individual degraded cells without rebuilding the whole
// grid through BuildMatrix.
func FillCell(a, b domain.Coordinate) (distanceM, durationS int64) {
	dist := a.HaversineMeters(b)
	dur := dist / averageUrbanSpeedMPS
	return int64(dist + 0.5), int64(dur + 0.5)
}
