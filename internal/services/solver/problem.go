// Package solver defines the shared CVRP contract both backends satisfy:
// a common Problem input, a common Candidate output, center-zone arc-cost
// profiles, winner selection across candidates, and a greedy fallback for
// when neither backend returns a feasible solution.
package solver

import (
	"cvrp-optimizer/internal/domain"
)

// Config carries every knob spec.md's §6 configuration table assigns to
// the solver, independent of which backend executes it.
type Config struct {
	SolverType string // "backend_a" or "backend_b"

	TimeLimitSeconds int

	AllowCustomerSkipping    bool
	DistancePenaltyDisjoint  int // flat per-customer dropping cost (simple mode)
	DropPenaltyBase          int // prize mode: base
	DropPenaltyPerDemandUnit int // prize mode: k

	EnableParallelSolving bool
	NumWorkers            int // -1 means cores-1

	EnableCenterZoneRestrictions bool
	CenterZoneRadiusMeters       float64
	Center                       domain.Coordinate
	ExternalCenterPenaltyMult    float64 // multiplies P_in_nonCenter for external-class vehicles, default 1
	InternalCenterPenaltyMult    float64 // multiplies P_in_nonCenter for internal-class vehicles, default 1

	EnableFinalDepotReconfiguration bool

	// FirstSolutionStrategies / Metaheuristics are the cyclical lists
	// Backend A's parallel multi-strategy mode draws from.
	FirstSolutionStrategies []string
	Metaheuristics          []string
}

const (
	// penaltyOut is P_out: the cost a center-class vehicle pays for
	// visiting a customer outside the center zone.
	penaltyOut = 40000.0
	// penaltyInNonCenter is P_in_nonCenter: the cost a non-center-class
	// vehicle pays for visiting a customer inside the center zone.
	penaltyInNonCenter = 40000.0
	// discountCenterInZone scales down a center-class vehicle's arc cost
	// to an in-zone customer.
	discountCenterInZone = 0.5
)

// Problem bundles everything both backends need: serviceable customers,
// the expanded fleet, the traffic-adjusted matrix, and the solver config.
// Node 0..D-1 are depots (matrix order); D..D+C-1 are customers in the
// same order as Customers.
type Problem struct {
	Customers []domain.Customer
	Depots    *domain.DepotSet
	Units     []domain.VehicleUnit
	Matrix    *domain.Matrix
	Config    Config
}

// CustomerNode returns the matrix node index for Customers[i].
func (p Problem) CustomerNode(i int) int {
	return p.Depots.Len() + i
}

// InCenterZone reports whether customer i lies within the center zone.
func (p Problem) InCenterZone(i int) bool {
	if !p.Config.EnableCenterZoneRestrictions || p.Config.CenterZoneRadiusMeters <= 0 {
		return false
	}
	return p.Customers[i].Coordinate.HaversineMeters(p.Config.Center) <= p.Config.CenterZoneRadiusMeters
}

// DropPenalty returns the cost of omitting customer i, per the configured
// mode: a flat constant (simple mode) or base + demand*k (prize mode).
func (p Problem) DropPenalty(i int) float64 {
	if p.Config.DropPenaltyPerDemandUnit > 0 || p.Config.DropPenaltyBase > 0 {
		return float64(p.Config.DropPenaltyBase) + float64(p.Customers[i].DemandUnits)*float64(p.Config.DropPenaltyPerDemandUnit)
	}
	return float64(p.Config.DistancePenaltyDisjoint)
}

// Candidate is one complete solver output before winner selection: a set
// of routes (by vehicle unit index into Problem.Units), the customer
// indices dropped, and the fitness the backend itself computed (used only
// to rank candidates — final reported metrics are always recomputed from
// the real matrix in solution extraction).
type Candidate struct {
	// RouteCustomers[u] is the ordered list of customer indices (into
	// Problem.Customers) assigned to Units[u]. Empty slice or absent key
	// means the unit was not used.
	RouteCustomers map[int][]int
	Dropped        []int

	Fitness     float64
	VehicleUsed int
	Feasible    bool

	// SolutionID distinguishes candidates from the same run for the final
	// deterministic tie-break in winner selection.
	SolutionID string
	Strategy   string
}
