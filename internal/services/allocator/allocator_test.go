package allocator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp-optimizer/internal/domain"
)

func testSpecs() []domain.VehicleSpec {
	return []domain.VehicleSpec{
		{Class: domain.VehicleClassInternal, Capacity: 100, FleetCount: 2, Enabled: true},
	}
}

func TestAllocateOversizedGoesToWarehouse(t *testing.T) {
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 500, Coordinate: domain.Coordinate{Lat: 1, Lon: 1}},
		{ID: "c2", DemandUnits: 10, Coordinate: domain.Coordinate{Lat: 1, Lon: 1}},
	}
	res := Allocate(customers, testSpecs(), Config{PolicyCapUnits: 0})

	require.Len(t, res.Warehouse, 1)
	assert.Equal(t, "c1", res.Warehouse[0].ID)
	require.Len(t, res.Serviceable, 1)
	assert.Equal(t, "c2", res.Serviceable[0].ID)
}

func TestAllocatePolicyCapExcludesLargeDemand(t *testing.T) {
	customers := []domain.Customer{
		{ID: "c1", DemandUnits: 60, Coordinate: domain.Coordinate{Lat: 1, Lon: 1}},
	}
	res := Allocate(customers, testSpecs(), Config{PolicyCapUnits: 50})

	require.Len(t, res.Warehouse, 1)
	assert.Empty(t, res.Serviceable)
}

func TestAllocateStopsAdmittingOnceCapacityExhausted(t *testing.T) {
	customers := []domain.Customer{
		{ID: "a", DemandUnits: 90, Coordinate: domain.Coordinate{Lat: 0, Lon: 0}},
		{ID: "b", DemandUnits: 90, Coordinate: domain.Coordinate{Lat: 0, Lon: 0}},
		{ID: "c", DemandUnits: 90, Coordinate: domain.Coordinate{Lat: 0, Lon: 0}},
	}
	res := Allocate(customers, testSpecs(), Config{})

	// capacity_total = 200; sorted ascending by demand (all equal) then by
	// distance-from-depot descending (all equal) then by id ascending, so
	// admission order is a, b, c. a+b=180 fits, c would push to 270>200.
	assert.ElementsMatch(t, []string{"a", "b"}, ids(res.Serviceable))
	assert.ElementsMatch(t, []string{"c"}, ids(res.Warehouse))
	assert.InDelta(t, 180.0/200.0, res.Utilization, 1e-9)
}

func TestAllocateIsDeterministicAcrossShuffledInput(t *testing.T) {
	base := make([]domain.Customer, 0, 40)
	for i := 0; i < 40; i++ {
		base = append(base, domain.Customer{
			ID:          string(rune('a' + i%26)) + string(rune('0'+i/26)),
			DemandUnits: (i * 7) % 30,
			Coordinate:  domain.Coordinate{Lat: float64(i) * 0.01, Lon: float64(i) * 0.01},
		})
	}
	specs := testSpecs()
	cfg := Config{PolicyCapUnits: 25}

	first := Allocate(base, specs, cfg)

	shuffled := append([]domain.Customer(nil), base...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second := Allocate(shuffled, specs, cfg)

	assert.Equal(t, ids(first.Serviceable), ids(second.Serviceable))
	assert.Equal(t, ids(first.Warehouse), ids(second.Warehouse))
	assert.Equal(t, first.Utilization, second.Utilization)
}

func ids(customers []domain.Customer) []string {
	out := make([]string, len(customers))
	for i, c := range customers {
		out[i] = c.ID
	}
	return out
}
