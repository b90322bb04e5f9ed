package backendb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/services/solver"
)

func buildSmallProblem() solver.Problem {
	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}},
		{ID: "c2", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.702, Lon: 23.322}},
		{ID: "c3", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.703, Lon: 23.323}},
	}
	specs := []domain.VehicleSpec{
		{Class: domain.VehicleClassInternal, Capacity: 100, FleetCount: 1, Enabled: true, StartDepot: depot, MaxTimeMinutes: 600},
	}
	depots := domain.NewDepotSet(specs)
	units := domain.ExpandFleet(specs, depots.IndexOf)

	locs := []domain.Coordinate{depot, customers[0].Coordinate, customers[1].Coordinate, customers[2].Coordinate}
	m := domain.NewMatrix(locs)
	for i := range locs {
		for j := range locs {
			if i == j {
				continue
			}
			d := locs[i].HaversineMeters(locs[j])
			m.Set(i, j, int64(d), int64(d/10), false)
		}
	}

	return solver.Problem{
		Customers: customers,
		Depots:    depots,
		Units:     units,
		Matrix:    m,
		Config:    solver.Config{TimeLimitSeconds: 1, SolverType: "backend_b"},
	}
}

func TestBackendBSolvesSmallProblem(t *testing.T) {
	p := buildSmallProblem()
	b := New()

	cand, err := b.Solve(context.Background(), p, solver.StrategyParams{WorkerSeed: 1})
	require.NoError(t, err)
	assert.True(t, cand.Feasible)

	served := 0
	for _, seq := range cand.RouteCustomers {
		served += len(seq)
	}
	assert.Equal(t, len(p.Customers), served+len(cand.Dropped))
}

func TestBackendBRespectsCapacity(t *testing.T) {
	p := buildSmallProblem()
	p.Units[0].Spec.Capacity = 15 // only one customer can fit
	p.Config.AllowCustomerSkipping = true

	b := New()
	cand, err := b.Solve(context.Background(), p, solver.StrategyParams{WorkerSeed: 2})
	require.NoError(t, err)

	for _, seq := range cand.RouteCustomers {
		demand := 0
		for _, ci := range seq {
			demand += p.Customers[ci].DemandUnits
		}
		assert.LessOrEqual(t, demand, p.Units[0].Spec.Capacity)
	}
}
