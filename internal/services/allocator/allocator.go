// Package allocator splits the ingested customer list into a serviceable
// set handed to the solver and a warehouse set the fleet cannot reach,
// before any routing is attempted.
package allocator

import (
	"sort"

	"cvrp-optimizer/internal/domain"
)

// Config bounds the allocator: the central depot used for the
// distance-from-depot sort key, and the per-customer policy cap.
type Config struct {
	CentralDepot   domain.Coordinate
	PolicyCapUnits int
}

// Result is the allocator's output set plus the utilization ratio spec.md
// §4.4 defines as used/capacity_total.
type Result struct {
	Serviceable []domain.Customer
	Warehouse   []domain.Customer
	Utilization float64
}

// Allocate splits customers into serviceable and warehouse sets using the
// dual-key sort and three-tier admission policy: oversized (exceeds every
// vehicle's single capacity) and over-policy-cap customers go straight to
// the warehouse; everything else is admitted while it still fits the
// fleet's total capacity.
func Allocate(customers []domain.Customer, specs []domain.VehicleSpec, cfg Config) Result {
	capacityTotal := 0
	capacityMaxSingle := 0
	for _, s := range specs {
		if !s.Enabled {
			continue
		}
		capacityTotal += s.Capacity * s.FleetCount
		if s.Capacity > capacityMaxSingle {
			capacityMaxSingle = s.Capacity
		}
	}

	ordered := append([]domain.Customer(nil), customers...)
	sort.Slice(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j], cfg.CentralDepot)
	})

	result := Result{}
	used := 0
	for _, c := range ordered {
		switch {
		case c.DemandUnits > capacityMaxSingle:
			result.Warehouse = append(result.Warehouse, c)
		case cfg.PolicyCapUnits > 0 && c.DemandUnits > cfg.PolicyCapUnits:
			result.Warehouse = append(result.Warehouse, c)
		case used+c.DemandUnits <= capacityTotal:
			result.Serviceable = append(result.Serviceable, c)
			used += c.DemandUnits
		default:
			result.Warehouse = append(result.Warehouse, c)
		}
	}

	if capacityTotal > 0 {
		result.Utilization = float64(used) / float64(capacityTotal)
	}
	return result
}

// less implements the dual-key sort: demand ascending, then
// distance-from-central-depot descending, with a deterministic id
// tie-break so the ordering (and therefore the admission outcome) never
// depends on input order or sort stability.
func less(a, b domain.Customer, depot domain.Coordinate) bool {
	if a.DemandUnits != b.DemandUnits {
		return a.DemandUnits < b.DemandUnits
	}
	da := a.Coordinate.HaversineMeters(depot)
	db := b.Coordinate.HaversineMeters(depot)
	if da != db {
		return da > db
	}
	return a.ID < b.ID
}
