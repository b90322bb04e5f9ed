package backenda

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/services/solver"
)

func buildTestProblem() solver.Problem {
	depot := domain.Coordinate{Lat: 42.70, Lon: 23.32}
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.701, Lon: 23.321}},
		{ID: "c2", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 42.702, Lon: 23.322}},
	}
	specs := []domain.VehicleSpec{
		{Class: domain.VehicleClassInternal, Capacity: 100, FleetCount: 1, Enabled: true, StartDepot: depot, MaxTimeMinutes: 600},
	}
	depots := domain.NewDepotSet(specs)
	units := domain.ExpandFleet(specs, depots.IndexOf)

	locs := []domain.Coordinate{depot, customers[0].Coordinate, customers[1].Coordinate}
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

	return solver.Problem{Customers: customers, Depots: depots, Units: units, Matrix: m}
}

func TestBuildNodeToMatrixMapsCustomersAndDepots(t *testing.T) {
	p := buildTestProblem()
	table := buildNodeToMatrix(p)

	assert.Equal(t, p.CustomerNode(0), table[0])
	assert.Equal(t, p.CustomerNode(1), table[1])

	base := len(p.Customers)
	assert.Equal(t, p.Units[0].StartNode, table[base])
	assert.Equal(t, p.Units[0].EndNode, table[base+1])
}

func TestArcCostMeasureDelegatesThroughNodeMapping(t *testing.T) {
	p := buildTestProblem()
	nodeToMatrix := buildNodeToMatrix(p)
	m := arcCostMeasure{cost: solver.NewArcCost(p, domain.VehicleClassInternal), nodeToMatrix: nodeToMatrix}

	base := len(p.Customers)
	got := m.Cost(base, 0) // depot start -> first customer
	want := float64(p.Matrix.Distance(p.Units[0].StartNode, p.CustomerNode(0)))
	assert.InDelta(t, want, got, 1e-6)
}

func TestUnitIDIsDeterministic(t *testing.T) {
	p := buildTestProblem()
	assert.Equal(t, "internal-0-0", unitID(p.Units[0]))
}
