package solver

import (
	"sort"

	"cvrp-optimizer/internal/domain"
)

// Greedy produces a best-effort candidate when neither backend returns a
// feasible solution within budget: sort remaining customers by demand
// descending, and for each try every vehicle unit in turn, inserting at
// the cheapest feasible position (nearest-neighbor insertion) subject to
// capacity/distance/stops/time; if no unit admits it, drop the customer.
// The resulting candidate is always marked degraded by the caller.
func Greedy(p Problem) Candidate {
	order := make([]int, len(p.Customers))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		di, dj := p.Customers[order[i]].DemandUnits, p.Customers[order[j]].DemandUnits
		if di != dj {
			return di > dj
		}
		return p.Customers[order[i]].ID < p.Customers[order[j]].ID
	})

	routes := make(map[int][]int, len(p.Units))

	var dropped []int

	for _, ci := range order {
		bestUnit := -1
		bestPos := -1
		bestCost := 0.0

		for u, unit := range p.Units {
			pos, cost, ok := cheapestInsertion(p, unit, routes[u], ci)
			if !ok {
				continue
			}
			if bestUnit == -1 || cost < bestCost {
				bestUnit, bestPos, bestCost = u, pos, cost
			}
		}

		if bestUnit == -1 {
			dropped = append(dropped, ci)
			continue
		}

		seq := routes[bestUnit]
		seq = append(seq, 0)
		copy(seq[bestPos+1:], seq[bestPos:])
		seq[bestPos] = ci
		routes[bestUnit] = seq
	}

	vehiclesUsed := 0
	fitness := 0.0
	for u, seq := range routes {
		if len(seq) == 0 {
			continue
		}
		vehiclesUsed++
		fitness += routeDistanceCost(p, p.Units[u], seq)
	}
	for _, ci := range dropped {
		fitness += p.DropPenalty(ci)
	}

	return Candidate{
		RouteCustomers: routes,
		Dropped:        dropped,
		Fitness:        fitness,
		VehicleUsed:    vehiclesUsed,
		Feasible:       true,
		SolutionID:     "greedy",
		Strategy:       "greedy_fallback",
	}
}

// cheapestInsertion returns the cheapest feasible position to insert
// customer ci into unit's existing sequence seq, or ok=false if no
// position keeps the route within capacity/distance/stops/time.
func cheapestInsertion(p Problem, unit domain.VehicleUnit, seq []int, ci int) (pos int, cost float64, ok bool) {
	demand := 0
	for _, c := range seq {
		demand += p.Customers[c].DemandUnits
	}
	if demand+p.Customers[ci].DemandUnits > unit.Spec.Capacity {
		return 0, 0, false
	}
	if unit.Spec.MaxStops > 0 && len(seq)+1 > unit.Spec.MaxStops {
		return 0, 0, false
	}

	bestPos := -1
	bestDelta := 0.0
	bestOK := false

	for at := 0; at <= len(seq); at++ {
		candidate := make([]int, 0, len(seq)+1)
		candidate = append(candidate, seq[:at]...)
		candidate = append(candidate, ci)
		candidate = append(candidate, seq[at:]...)

		dist, dur, stops := routeMetrics(p, unit, candidate)
		if unit.Spec.MaxDistanceMeters > 0 && dist > int64(unit.Spec.MaxDistanceMeters) {
			continue
		}
		maxTime := unit.Spec.MaxTimeSeconds()
		if maxTime > 0 && int(dur)+unit.Spec.ServiceSecondsPerStop()*stops > maxTime {
			continue
		}

		delta := routeDistanceCost(p, unit, candidate)
		if !bestOK || delta < bestDelta {
			bestOK = true
			bestDelta = delta
			bestPos = at
		}
	}

	if !bestOK {
		return 0, 0, false
	}
	return bestPos, bestDelta, true
}

// routeMetrics computes raw distance (meters), duration (seconds), and
// stop count for a vehicle traversing seq from its start depot back to
// its end depot, using plain matrix distances/durations (no class cost
// adjustment — these are feasibility checks, not the solver's objective).
func routeMetrics(p Problem, unit domain.VehicleUnit, seq []int) (distance, duration int64, stops int) {
	prev := unit.StartNode
	for _, ci := range seq {
		node := p.CustomerNode(ci)
		distance += p.Matrix.Distance(prev, node)
		duration += p.Matrix.Duration(prev, node)
		prev = node
	}
	distance += p.Matrix.Distance(prev, unit.EndNode)
	duration += p.Matrix.Duration(prev, unit.EndNode)
	return distance, duration, len(seq)
}

// routeDistanceCost is the plain-distance fitness contribution of seq,
// matching spec.md's fitness definition (pre-traffic-adjustment distance
// units, which the Matrix's DistanceM already holds since the traffic
// adjuster never touches distances).
func routeDistanceCost(p Problem, unit domain.VehicleUnit, seq []int) float64 {
	dist, _, _ := routeMetrics(p, unit, seq)
	return float64(dist)
}
