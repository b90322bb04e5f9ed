package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/adapters/cache"
	"cvrp-optimizer/internal/adapters/routing"
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
	"cvrp-optimizer/internal/services/allocator"
	"cvrp-optimizer/internal/services/matrixbuilder"
	"cvrp-optimizer/internal/services/solver"
	"cvrp-optimizer/internal/services/traffic"
	"cvrp-optimizer/internal/services/tsp"
)

// greedyBackend adapts solver.Greedy to the solver.Backend interface so
// tests can exercise the full pipeline without the weight of either real
// CVRP engine.
type greedyBackend struct{}

func (greedyBackend) Name() string { return "greedy_test_backend" }

func (greedyBackend) Solve(_ context.Context, p solver.Problem, _ solver.StrategyParams) (solver.Candidate, error) {
	return solver.Greedy(p), nil
}

type fakeCustomerRepo struct {
	customers []domain.Customer
}

func (f fakeCustomerRepo) ListCustomers(context.Context) ([]domain.Customer, error) {
	return f.customers, nil
}

func buildTestPlanner(t *testing.T, customers []domain.Customer) *Planner {
	t.Helper()

	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	specs := []domain.VehicleSpec{{
		Class: domain.VehicleClassInternal, Capacity: 1000, FleetCount: 2,
		Enabled: true, StartDepot: depot, MaxTimeMinutes: 600,
	}}

	gateway := routing.NewHaversineGateway()
	matrixCache := cache.NewMemoryCache(0)
	builder := matrixbuilder.New(matrixbuilder.DefaultConfig(), gateway, matrixCache, ports.NoopReporter{})

	cfg := Config{
		VehicleSpecs:  specs,
		Allocator:     allocator.Config{CentralDepot: depot},
		MatrixBuilder: matrixbuilder.DefaultConfig(),
		Traffic:       traffic.Config{},
		Solver:        solver.Config{DistancePenaltyDisjoint: 100000, AllowCustomerSkipping: true},
		TSP:           tsp.Config{Enabled: false},
		DepartureSecond: -1,
	}

	return New(fakeCustomerRepo{customers: customers}, builder, greedyBackend{}, nil, cfg)
}

func TestPlanProducesRoutesForServiceableCustomers(t *testing.T) {
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}},
		{ID: "c2", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.702, Lon: 23.322}},
	}
	p := buildTestPlanner(t, customers)

	result, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.Solution.Routes)
	require.Equal(t, 2, result.Solution.RoutedCustomerCount())
}

func TestPlanReturnsInfeasibleWhenNoVehiclesEnabled(t *testing.T) {
	p := buildTestPlanner(t, []domain.Customer{{ID: "c1", DemandUnits: 5, Coordinate: domain.Coordinate{Lat: 1, Lon: 1}}})
	p.cfg.VehicleSpecs[0].Enabled = false

	_, err := p.Plan(context.Background())
	require.ErrorIs(t, err, domain.ErrInfeasibleProblem)
}

func TestPlanRoutesOversizedCustomersToWarehouse(t *testing.T) {
	customers := []domain.Customer{
		{ID: "small", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}},
		{ID: "huge", DemandUnits: 5000, Coordinate: domain.Coordinate{Lat: 42.703, Lon: 23.323}},
	}
	p := buildTestPlanner(t, customers)

	result, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Contains(t, result.Solution.Dropped, "huge")
}
