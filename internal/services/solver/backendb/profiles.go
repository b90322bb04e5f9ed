// Package backendb implements the iterated local search backend: two
// precomputed class-profile cost matrices (center-class vs other-class)
// rather than a per-call cost evaluator, matching the data-oriented style
// spec.md assigns to this backend.
package backendb

import (
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/services/solver"
)

// profiles holds the two precomputed N×N arc-cost matrices and a lookup
// from vehicle class to the profile it is bound to.
type profiles struct {
	center [][]float64
	other  [][]float64
}

func buildProfiles(p solver.Problem) profiles {
	return profiles{
		center: solver.NewArcCost(p, domain.VehicleClassCenter).BuildClassMatrix(),
		other:  solver.NewArcCost(p, domain.VehicleClassInternal).BuildClassMatrix(),
	}
}

// costFor returns the correct profile matrix for unit's class. Every
// non-center class shares the "other" profile since the center-zone rule
// treats them identically (see spec.md's cost table).
func (pr profiles) costFor(class domain.VehicleClass) [][]float64 {
	if class == domain.VehicleClassCenter {
		return pr.center
	}
	return pr.other
}
