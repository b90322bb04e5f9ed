package backenda

import (
	"github.com/nextmv-io/sdk/route"
	"github.com/nextmv-io/sdk/store"

	"cvrp-optimizer/internal/services/solver"
)

// toCandidate converts the SDK's plan representation into the shared
// solver.Candidate shape, mapping each customer's stop ID back to its
// Problem index and each vehicle back to its unit index by position
// (route.Plan preserves the vehicle order NewRouter was given).
func toCandidate(p solver.Problem, sol store.Solution, strategy solver.StrategyParams) solver.Candidate {
	// route.NewPlan derives the same *route.Plan shape the SDK's own
	// Format pipeline hands to a router.Format callback, just invoked
	// directly instead of through run.Run's encoder.
	plan := route.NewPlan(sol)

	customerIndexByID := make(map[string]int, len(p.Customers))
	for i, c := range p.Customers {
		customerIndexByID[c.ID] = i
	}

	routeCustomers := make(map[int][]int, len(p.Units))
	for vIdx, vehicle := range plan.Vehicles {
		var customers []int
		for _, stop := range vehicle.Route {
			if ci, ok := customerIndexByID[stop.ID]; ok {
				customers = append(customers, ci)
			}
		}
		if len(customers) > 0 {
			routeCustomers[vIdx] = customers
		}
	}

	dropped := make([]int, 0, len(plan.Unassigned))
	for _, u := range plan.Unassigned {
		if ci, ok := customerIndexByID[u.ID]; ok {
			dropped = append(dropped, ci)
		}
	}

	vehiclesUsed := 0
	for _, customers := range routeCustomers {
		if len(customers) > 0 {
			vehiclesUsed++
		}
	}

	return solver.Candidate{
		RouteCustomers: routeCustomers,
		Dropped:        dropped,
		Fitness:        float64(plan.Value),
		VehicleUsed:    vehiclesUsed,
		Feasible:       len(dropped) == 0 || p.Config.AllowCustomerSkipping,
		Strategy:       strategy.FirstSolution + "+" + strategy.Metaheuristic,
	}
}
