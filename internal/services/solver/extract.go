package solver

import "cvrp-optimizer/internal/domain"

// Extract turns a winning Candidate into a domain.Solution, recomputing
// every per-route total from the adjusted matrix rather than trusting the
// backend's internal (profile-cost inflated) bookkeeping. Each stop's
// arrival/depart clock also adds the vehicle's service time; the route's
// DurationSecs is travel time only.
func Extract(p Problem, c Candidate, degraded bool) domain.Solution {
	sol := domain.Solution{
		Strategy: c.Strategy,
		Degraded: degraded,
		Fitness:  c.Fitness,
	}

	for unitIdx, customerIdxs := range c.RouteCustomers {
		if len(customerIdxs) == 0 {
			continue
		}
		unit := p.Units[unitIdx]
		route := buildRoute(p, unit, unitIdx, customerIdxs)
		sol.Routes = append(sol.Routes, route)
	}

	for _, ci := range c.Dropped {
		sol.Dropped = append(sol.Dropped, p.Customers[ci].ID)
	}

	sol.Recompute()
	return sol
}

func buildRoute(p Problem, unit domain.VehicleUnit, unitIdx int, customerIdxs []int) domain.Route {
	route := domain.Route{
		VehicleSpecIndex: unit.SpecIndex,
		VehicleUnitIndex: unit.UnitIndex,
		Class:            unit.Spec.Class,
		Feasible:         true,
	}

	clock := unit.Spec.StartMinuteOfDay * 60
	serviceSecs := unit.Spec.ServiceSecondsPerStop()
	prevNode := unit.StartNode
	var distance, duration int64
	var demand int

	for _, ci := range customerIdxs {
		node := p.CustomerNode(ci)
		legDist := p.Matrix.Distance(prevNode, node)
		legDur := p.Matrix.Duration(prevNode, node)

		distance += legDist
		duration += legDur
		clock += int(legDur)

		arrival := clock
		clock += serviceSecs
		depart := clock

		route.Stops = append(route.Stops, domain.Stop{
			CustomerID:    p.Customers[ci].ID,
			ArrivalSecond: arrival,
			DepartSecond:  depart,
		})

		demand += p.Customers[ci].DemandUnits
		prevNode = node
	}

	// Return leg to the end depot.
	distance += p.Matrix.Distance(prevNode, unit.EndNode)
	duration += p.Matrix.Duration(prevNode, unit.EndNode)

	route.DistanceMeters = distance
	route.DurationSecs = duration
	route.DemandUnits = demand
	return route
}
