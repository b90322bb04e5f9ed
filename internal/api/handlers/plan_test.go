package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/adapters/cache"
	"cvrp-optimizer/internal/adapters/routing"
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
	"cvrp-optimizer/internal/services/allocator"
	"cvrp-optimizer/internal/services/matrixbuilder"
	"cvrp-optimizer/internal/services/planner"
	"cvrp-optimizer/internal/services/solver"
	"cvrp-optimizer/internal/services/traffic"
	"cvrp-optimizer/internal/services/tsp"
)

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

func buildTestPlanner(t *testing.T, customers []domain.Customer, enabled bool) *planner.Planner {
	t.Helper()

	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	specs := []domain.VehicleSpec{{
		Class: domain.VehicleClassInternal, Capacity: 1000, FleetCount: 2,
		Enabled: enabled, StartDepot: depot, MaxTimeMinutes: 600,
	}}

	gateway := routing.NewHaversineGateway()
	matrixCache := cache.NewMemoryCache(0)
	builder := matrixbuilder.New(matrixbuilder.DefaultConfig(), gateway, matrixCache, ports.NoopReporter{})

	cfg := planner.Config{
		VehicleSpecs:    specs,
		Allocator:       allocator.Config{CentralDepot: depot},
		MatrixBuilder:   matrixbuilder.DefaultConfig(),
		Traffic:         traffic.Config{},
		Solver:          solver.Config{DistancePenaltyDisjoint: 100000, AllowCustomerSkipping: true},
		TSP:             tsp.Config{Enabled: false},
		DepartureSecond: -1,
	}

	return planner.New(fakeCustomerRepo{customers: customers}, builder, greedyBackend{}, nil, cfg)
}

func TestPlanHandlerReturnsRoutesForServiceableCustomers(t *testing.T) {
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}},
		{ID: "c2", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.702, Lon: 23.322}},
	}
	h := &PlanHandler{Planner: buildTestPlanner(t, customers, true)}

	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	rec := httptest.NewRecorder()

	h.Plan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"routes"`)
}

func TestPlanHandlerRejectsNonPost(t *testing.T) {
	h := &PlanHandler{Planner: buildTestPlanner(t, nil, true)}

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	rec := httptest.NewRecorder()

	h.Plan(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPlanHandlerRejectsMultipleJSONObjects(t *testing.T) {
	h := &PlanHandler{Planner: buildTestPlanner(t, nil, true)}

	body := strings.NewReader(`{}{}`)
	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	rec := httptest.NewRecorder()

	h.Plan(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHandlerMapsInfeasibleToUnprocessableEntity(t *testing.T) {
	h := &PlanHandler{Planner: buildTestPlanner(t, []domain.Customer{
		{ID: "c1", DemandUnits: 5, Coordinate: domain.Coordinate{Lat: 1, Lon: 1}},
	}, false)}

	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	rec := httptest.NewRecorder()

	h.Plan(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlanHandlerRejectsNilPlanner(t *testing.T) {
	h := &PlanHandler{}

	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	rec := httptest.NewRecorder()

	h.Plan(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
