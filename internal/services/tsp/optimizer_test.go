package tsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/domain"
)

// buildGridMatrix lays out a depot and four customers on a 2D grid and
// fills a full matrix with Euclidean (as meters) distances so the tour
// length math is easy to reason about by hand.
func buildGridMatrix(locs []domain.Coordinate) *domain.Matrix {
	m := domain.NewMatrix(locs)
	for i := range locs {
		for j := range locs {
			if i == j {
				continue
			}
			d := locs[i].HaversineMeters(locs[j])
			m.Set(i, j, int64(d), int64(d), false)
		}
	}
	return m
}

func buildTestUnit(startDepot, tspOrigin domain.Coordinate, startNode int) domain.VehicleUnit {
	spec := domain.VehicleSpec{
		Class:            domain.VehicleClassInternal,
		Capacity:         1000,
		FleetCount:       1,
		StartDepot:       startDepot,
		TSPOrigin:        tspOrigin,
		StartMinuteOfDay: 8 * 60,
	}
	spec.Normalize()
	return domain.VehicleUnit{
		Spec:       spec,
		StartNode:  startNode,
		EndNode:    startNode,
		TSPOrigin:  spec.TSPOrigin,
		StartDepot: spec.StartDepot,
	}
}

func TestOptimizeSkipsRouteWhenOriginEqualsDepotAndNotForced(t *testing.T) {
	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	c1 := domain.Customer{ID: "c1", Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}}
	c2 := domain.Customer{ID: "c2", Coordinate: domain.Coordinate{Lat: 42.702, Lon: 23.322}}
	locs := []domain.Coordinate{depot, c1.Coordinate, c2.Coordinate}
	m := buildGridMatrix(locs)

	depots := domain.NewDepotSet([]domain.VehicleSpec{{Class: domain.VehicleClassInternal, Enabled: true, FleetCount: 1, StartDepot: depot}})
	unit := buildTestUnit(depot, depot, 0)

	sol := domain.Solution{Routes: []domain.Route{{
		Stops: []domain.Stop{{CustomerID: "c1"}, {CustomerID: "c2"}},
	}}}

	opt := New(m, depots, DefaultConfig())
	out := opt.Optimize(sol, []domain.VehicleUnit{unit}, []domain.Customer{c1, c2})

	assert.Equal(t, sol.Routes[0].Stops, out.Routes[0].Stops)
}

func TestOptimizeResequencesFromDistinctOrigin(t *testing.T) {
	// Origin and four customers colinear, evenly spaced, so the optimal
	// tour visits them in order and any zigzag is strictly longer.
	depot := domain.Coordinate{Lat: 42.0, Lon: 22.990}
	origin := domain.Coordinate{Lat: 42.0, Lon: 23.000}
	p1 := domain.Coordinate{Lat: 42.0, Lon: 23.001}
	p2 := domain.Coordinate{Lat: 42.0, Lon: 23.002}
	p3 := domain.Coordinate{Lat: 42.0, Lon: 23.003}
	p4 := domain.Coordinate{Lat: 42.0, Lon: 23.004}
	c1 := domain.Customer{ID: "c1", Coordinate: p1}
	c2 := domain.Customer{ID: "c2", Coordinate: p2}
	c3 := domain.Customer{ID: "c3", Coordinate: p3}
	c4 := domain.Customer{ID: "c4", Coordinate: p4}

	locs := []domain.Coordinate{depot, origin, p1, p2, p3, p4}
	m := buildGridMatrix(locs)

	specs := []domain.VehicleSpec{{Class: domain.VehicleClassInternal, Enabled: true, FleetCount: 1, StartDepot: depot, TSPOrigin: origin}}
	depots := domain.NewDepotSet(specs)
	require.Equal(t, 2, depots.Len())

	unit := buildTestUnit(depot, origin, depots.IndexOf(depot))

	// Deliberately zigzag: c1, c3, c2, c4 instead of the optimal c1..c4.
	sol := domain.Solution{Routes: []domain.Route{{
		Stops: []domain.Stop{{CustomerID: "c1"}, {CustomerID: "c3"}, {CustomerID: "c2"}, {CustomerID: "c4"}},
	}}}

	opt := New(m, depots, DefaultConfig())
	out := opt.Optimize(sol, []domain.VehicleUnit{unit}, []domain.Customer{c1, c2, c3, c4})

	require.Len(t, out.Routes, 1)
	got := out.Routes[0].CustomerIDs()
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, got)
}

func TestOptimizeDisabledIsNoop(t *testing.T) {
	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	origin := domain.Coordinate{Lat: 42.71, Lon: 23.33}
	c1 := domain.Customer{ID: "c1", Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}}
	locs := []domain.Coordinate{depot, origin, c1.Coordinate}
	m := buildGridMatrix(locs)
	specs := []domain.VehicleSpec{{Class: domain.VehicleClassInternal, Enabled: true, FleetCount: 1, StartDepot: depot, TSPOrigin: origin}}
	depots := domain.NewDepotSet(specs)
	unit := buildTestUnit(depot, origin, depots.IndexOf(depot))

	sol := domain.Solution{Routes: []domain.Route{{Stops: []domain.Stop{{CustomerID: "c1"}}}}}
	cfg := DefaultConfig()
	cfg.Enabled = false

	opt := New(m, depots, cfg)
	out := opt.Optimize(sol, []domain.VehicleUnit{unit}, []domain.Customer{c1})

	assert.Equal(t, sol, out)
}

func TestNearestNeighborTourIsDeterministic(t *testing.T) {
	depot := domain.Coordinate{Lat: 0, Lon: 0}
	a := domain.Coordinate{Lat: 0, Lon: 1}
	b := domain.Coordinate{Lat: 0, Lon: 2}
	locs := []domain.Coordinate{depot, a, b}
	m := buildGridMatrix(locs)

	order1, cost1 := nearestNeighborTour(m, 0, []int{2, 1})
	order2, cost2 := nearestNeighborTour(m, 0, []int{1, 2})

	assert.Equal(t, order1, order2)
	assert.Equal(t, cost1, cost2)
}

func TestOpenTourCostSumsClosedLoop(t *testing.T) {
	depot := domain.Coordinate{Lat: 0, Lon: 0}
	a := domain.Coordinate{Lat: 0, Lon: 1}
	locs := []domain.Coordinate{depot, a}
	m := buildGridMatrix(locs)

	cost := openTourCost(m, 0, []int{1})
	assert.InDelta(t, float64(m.Distance(0, 1)*2), cost, 1e-6)
}
