package solver

import "cvrp-optimizer/internal/domain"

// ArcCost is a per-vehicle-class arc-cost evaluator over the distance
// matrix and the center-zone rule, replacing the closure-capture pattern
// of per-vehicle callbacks with a plain value computed on demand for
// (fromNode, customerIndex); BuildClassMatrix materializes it as a table.
//
// Built from distances (pre-traffic-adjustment units), matching spec.md's
// fitness definition; duration-based dimensions are evaluated separately
// from the traffic-adjusted matrix.
type ArcCost struct {
	problem Problem
	class   domain.VehicleClass
}

// NewArcCost builds the cost evaluator for one vehicle class.
func NewArcCost(p Problem, class domain.VehicleClass) ArcCost {
	return ArcCost{problem: p, class: class}
}

// Cost returns the arc cost from matrix node `from` to customer index `c`.
func (a ArcCost) Cost(from int, c int) float64 {
	p := a.problem
	to := p.CustomerNode(c)
	d := float64(p.Matrix.Distance(from, to))
	inZone := p.InCenterZone(c)

	if !p.Config.EnableCenterZoneRestrictions {
		return d
	}

	switch a.class {
	case domain.VehicleClassCenter:
		if inZone {
			return d * discountCenterInZone
		}
		return d + penaltyOut
	default:
		mult := 1.0
		switch a.class {
		case domain.VehicleClassExternal:
			if p.Config.ExternalCenterPenaltyMult > 0 {
				mult = p.Config.ExternalCenterPenaltyMult
			}
		case domain.VehicleClassInternal:
			if p.Config.InternalCenterPenaltyMult > 0 {
				mult = p.Config.InternalCenterPenaltyMult
			}
		}
		if inZone {
			return d + penaltyInNonCenter*mult
		}
		return d
	}
}

// CostNodeToNode returns the arc cost between two matrix node indices,
// applying the center-zone rule when the destination is a customer and
// falling back to the plain distance for depot-to-depot or any-to-depot
// legs, which the center-zone rule does not classify.
func (a ArcCost) CostNodeToNode(from, to int) float64 {
	p := a.problem
	if to < p.Depots.Len() {
		return float64(p.Matrix.Distance(from, to))
	}
	return a.Cost(from, to-p.Depots.Len())
}

// BuildClassMatrix materializes a full N×N arc-cost matrix for this
// vehicle class, the representation Backend B's two-profile design needs
// since it precomputes rather than evaluates lazily.
func (a ArcCost) BuildClassMatrix() [][]float64 {
	p := a.problem
	n := p.Matrix.N
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			out[i][j] = a.CostNodeToNode(i, j)
		}
	}
	return out
}
