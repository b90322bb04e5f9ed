package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/domain"
)

func buildTestProblem(t *testing.T) Problem {
	t.Helper()
	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}},
		{ID: "c2", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.702, Lon: 23.322}},
		{ID: "c3", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.703, Lon: 23.323}},
	}
	specs := []domain.VehicleSpec{
		{
			Class: domain.VehicleClassInternal, Capacity: 100, FleetCount: 1,
			Enabled: true, StartDepot: depot, MaxTimeMinutes: 600,
		},
	}
	depots := domain.NewDepotSet(specs)
	units := domain.ExpandFleet(specs, depots.IndexOf)

	locs := append([]domain.Coordinate{depot}, customerCoords(customers)...)
	m := domain.NewMatrix(locs)
	for i := range locs {
		for j := range locs {
			if i == j {
				continue
			}
			dist, dur := locs[i].HaversineMeters(locs[j]), 0.0
			m.Set(i, j, int64(dist), int64(dist/10), false)
			_ = dur
		}
	}

	return Problem{
		Customers: customers,
		Depots:    depots,
		Units:     units,
		Matrix:    m,
		Config: Config{
			TimeLimitSeconds: 5,
			SolverType:       "backend_b",
		},
	}
}

func customerCoords(customers []domain.Customer) []domain.Coordinate {
	out := make([]domain.Coordinate, len(customers))
	for i, c := range customers {
		out[i] = c.Coordinate
	}
	return out
}

func TestArcCostAppliesCenterDiscountAndPenalty(t *testing.T) {
	p := buildTestProblem(t)
	p.Config.EnableCenterZoneRestrictions = true
	p.Config.CenterZoneRadiusMeters = 1000
	p.Config.Center = p.Customers[0].Coordinate

	centerCost := NewArcCost(p, domain.VehicleClassCenter)
	internalCost := NewArcCost(p, domain.VehicleClassInternal)

	raw := float64(p.Matrix.Distance(0, p.CustomerNode(0)))
	assert.InDelta(t, raw*discountCenterInZone, centerCost.Cost(0, 0), 1e-6, "center vehicle discounted in zone")
	assert.InDelta(t, raw+penaltyInNonCenter, internalCost.Cost(0, 0), 1e-6, "internal vehicle penalized in zone")
}

func TestGreedyProducesFeasibleCandidate(t *testing.T) {
	p := buildTestProblem(t)
	cand := Greedy(p)

	assert.True(t, cand.Feasible)
	totalAssigned := 0
	for _, seq := range cand.RouteCustomers {
		totalAssigned += len(seq)
	}
	assert.Equal(t, len(p.Customers), totalAssigned+len(cand.Dropped))
}

func TestSelectWinnerPicksMinFitness(t *testing.T) {
	p := buildTestProblem(t)
	a := Candidate{Feasible: true, Fitness: 100, SolutionID: "a"}
	b := Candidate{Feasible: true, Fitness: 50, SolutionID: "b"}
	c := Candidate{Feasible: false, Fitness: 1, SolutionID: "c"}

	winner, ok := SelectWinner(p, []Candidate{a, b, c})
	require.True(t, ok)
	assert.Equal(t, "b", winner.SolutionID)
}

func TestSelectWinnerTieBreaksByServedDemand(t *testing.T) {
	p := buildTestProblem(t)
	a := Candidate{
		Feasible: true, Fitness: 10, SolutionID: "a",
		RouteCustomers: map[int][]int{0: {0}},
	}
	b := Candidate{
		Feasible: true, Fitness: 10, SolutionID: "b",
		RouteCustomers: map[int][]int{0: {0, 1}},
	}
	winner, ok := SelectWinner(p, []Candidate{a, b})
	require.True(t, ok)
	assert.Equal(t, "b", winner.SolutionID, "higher served demand wins the fitness tie")
}

func TestExtractRecomputesFromMatrix(t *testing.T) {
	p := buildTestProblem(t)
	cand := Candidate{
		Feasible:       true,
		RouteCustomers: map[int][]int{0: {0, 1, 2}},
		SolutionID:     "x",
		Strategy:       "test",
	}

	sol := Extract(p, cand, false)
	require.Len(t, sol.Routes, 1)
	assert.Equal(t, 3, sol.Routes[0].StopCount())
	assert.Equal(t, 30, sol.Routes[0].DemandUnits)
	assert.Greater(t, sol.Routes[0].DistanceMeters, int64(0))
	assert.Empty(t, sol.Dropped)
}
