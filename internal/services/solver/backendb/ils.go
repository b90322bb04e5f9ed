package backendb

import (
	"context"
	"math/rand"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/services/solver"
)

// Backend is the iterated local search CVRP engine: construct an initial
// solution via profile-weighted cheapest insertion, then relocate
// customers under a single seeded PRNG until ctx's deadline fires.
//
// Capacity is modeled as the two-dimensional load [demand, 1] with limits
// [capacity, max_stops] spec.md calls for; both dimensions are checked
// inline by cheapestInsertion and cheapestInsertionExcluding rather than by
// a generic constraint-stack, while feasible() checks distance and time.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "backend_b" }

func (b *Backend) Solve(ctx context.Context, p solver.Problem, strategy solver.StrategyParams) (solver.Candidate, error) {
	pr := buildProfiles(p)
	rng := rand.New(rand.NewSource(int64(strategy.WorkerSeed) + 1))

	state := construct(p, pr, rng)

	deadline := time.Now().Add(time.Duration(p.Config.TimeLimitSeconds) * time.Second)
	if p.Config.TimeLimitSeconds <= 0 {
		deadline = time.Now().Add(10 * time.Second)
	}

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return toCandidate(p, state, strategy), nil
		default:
		}
		improve(p, pr, rng, &state)
	}

	return toCandidate(p, state, strategy), nil
}

// ilsState is the mutable solution the local search operates on: a route
// (sequence of customer indices) per vehicle unit, plus the set of
// customer indices currently unrouted (candidates for insertion or
// permanently dropped when skipping is allowed).
type ilsState struct {
	routes    map[int][]int
	unrouted  map[int]bool
	costTotal float64
}

func construct(p solver.Problem, pr profiles, rng *rand.Rand) ilsState {
	state := ilsState{routes: make(map[int][]int), unrouted: make(map[int]bool)}
	order := rng.Perm(len(p.Customers))

	for _, ci := range order {
		bestUnit, bestPos, bestCost, ok := cheapestInsertion(p, pr, state.routes, ci)
		if ok {
			seq := state.routes[bestUnit]
			seq = insertAt(seq, bestPos, ci)
			state.routes[bestUnit] = seq
			state.costTotal += bestCost
			continue
		}
		state.unrouted[ci] = true
	}
	return state
}

func insertAt(seq []int, pos, v int) []int {
	seq = append(seq, 0)
	copy(seq[pos+1:], seq[pos:])
	seq[pos] = v
	return seq
}

func cheapestInsertion(p solver.Problem, pr profiles, routes map[int][]int, ci int) (unit, pos int, cost float64, ok bool) {
	bestUnit, bestPos := -1, -1
	bestDelta := 0.0

	for u, vehicleUnit := range p.Units {
		seq := routes[u]
		matrix := pr.costFor(vehicleUnit.Spec.Class)

		demand := 0
		for _, c := range seq {
			demand += p.Customers[c].DemandUnits
		}
		if demand+p.Customers[ci].DemandUnits > vehicleUnit.Spec.Capacity {
			continue
		}
		if vehicleUnit.Spec.MaxStops > 0 && len(seq)+1 > vehicleUnit.Spec.MaxStops {
			continue
		}

		for at := 0; at <= len(seq); at++ {
			candidate := insertAt(append([]int(nil), seq...), at, ci)
			if !feasible(p, vehicleUnit, candidate) {
				continue
			}
			delta := routeCost(p, matrix, vehicleUnit, candidate)
			if bestUnit == -1 || delta < bestDelta {
				bestUnit, bestPos, bestDelta = u, at, delta
			}
		}
	}

	if bestUnit == -1 {
		return 0, 0, 0, false
	}
	return bestUnit, bestPos, bestDelta, true
}

func feasible(p solver.Problem, unit domain.VehicleUnit, seq []int) bool {
	dist, dur, stops := rawMetrics(p, unit, seq)
	if unit.Spec.MaxDistanceMeters > 0 && dist > int64(unit.Spec.MaxDistanceMeters) {
		return false
	}
	maxTime := unit.Spec.MaxTimeSeconds()
	if maxTime > 0 && int(dur)+unit.Spec.ServiceSecondsPerStop()*stops > maxTime {
		return false
	}
	return true
}

func rawMetrics(p solver.Problem, unit domain.VehicleUnit, seq []int) (distance, duration int64, stops int) {
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

func routeCost(p solver.Problem, matrix [][]float64, unit domain.VehicleUnit, seq []int) float64 {
	prev := unit.StartNode
	total := 0.0
	for _, ci := range seq {
		node := p.CustomerNode(ci)
		total += matrix[prev][node]
		prev = node
	}
	total += matrix[prev][unit.EndNode]
	return total
}

// improve runs one relocate perturbation step, keeping the move
// only if it reduces total cost (steepest local move, not simulated
// annealing — this backend runs a single deterministic seed per worker).
func improve(p solver.Problem, pr profiles, rng *rand.Rand, state *ilsState) {
	if len(state.routes) == 0 {
		return
	}
	units := make([]int, 0, len(state.routes))
	for u := range state.routes {
		units = append(units, u)
	}
	if len(units) == 0 {
		return
	}

	fromUnit := units[rng.Intn(len(units))]
	seq := state.routes[fromUnit]
	if len(seq) == 0 {
		return
	}
	pos := rng.Intn(len(seq))
	ci := seq[pos]

	withoutCi := append(append([]int(nil), seq[:pos]...), seq[pos+1:]...)
	costBefore := routeCost(p, pr.costFor(p.Units[fromUnit].Spec.Class), p.Units[fromUnit], seq)
	costWithout := routeCost(p, pr.costFor(p.Units[fromUnit].Spec.Class), p.Units[fromUnit], withoutCi)
	removalGain := costBefore - costWithout

	toUnit, toPos, insertCost, ok := cheapestInsertionExcluding(p, pr, state.routes, ci, fromUnit)
	if !ok || insertCost >= removalGain {
		return
	}

	state.routes[fromUnit] = withoutCi
	state.routes[toUnit] = insertAt(state.routes[toUnit], toPos, ci)
	state.costTotal -= removalGain
	state.costTotal += insertCost
}

func cheapestInsertionExcluding(p solver.Problem, pr profiles, routes map[int][]int, ci, excludeUnit int) (unit, pos int, cost float64, ok bool) {
	bestUnit, bestPos := -1, -1
	bestDelta := 0.0
	for u, vehicleUnit := range p.Units {
		if u == excludeUnit {
			continue
		}
		seq := routes[u]
		matrix := pr.costFor(vehicleUnit.Spec.Class)

		demand := 0
		for _, c := range seq {
			demand += p.Customers[c].DemandUnits
		}
		if demand+p.Customers[ci].DemandUnits > vehicleUnit.Spec.Capacity {
			continue
		}
		if vehicleUnit.Spec.MaxStops > 0 && len(seq)+1 > vehicleUnit.Spec.MaxStops {
			continue
		}
		for at := 0; at <= len(seq); at++ {
			candidate := insertAt(append([]int(nil), seq...), at, ci)
			if !feasible(p, vehicleUnit, candidate) {
				continue
			}
			delta := routeCost(p, matrix, vehicleUnit, candidate)
			if bestUnit == -1 || delta < bestDelta {
				bestUnit, bestPos, bestDelta = u, at, delta
			}
		}
	}
	if bestUnit == -1 {
		return 0, 0, 0, false
	}
	return bestUnit, bestPos, bestDelta, true
}

func toCandidate(p solver.Problem, state ilsState, strategy solver.StrategyParams) solver.Candidate {
	routeCustomers := make(map[int][]int, len(state.routes))
	for u, seq := range state.routes {
		if len(seq) > 0 {
			routeCustomers[u] = seq
		}
	}

	fitness := 0.0
	for u, seq := range routeCustomers {
		dist, _, _ := rawMetrics(p, p.Units[u], seq)
		fitness += float64(dist)
	}

	var dropped []int
	for ci := range state.unrouted {
		dropped = append(dropped, ci)
		if p.Config.AllowCustomerSkipping {
			fitness += p.DropPenalty(ci)
		}
	}

	vehiclesUsed := 0
	for _, seq := range routeCustomers {
		if len(seq) > 0 {
			vehiclesUsed++
		}
	}

	// Required customers (skipping disallowed) that still could not be
	// placed mean this candidate does not actually satisfy the problem;
	// the orchestrator treats an infeasible result as a SolverFailure and
	// falls back to greedy.
	feasible := p.Config.AllowCustomerSkipping || len(dropped) == 0

	return solver.Candidate{
		RouteCustomers: routeCustomers,
		Dropped:        dropped,
		Fitness:        fitness,
		VehicleUsed:    vehiclesUsed,
		Feasible:       feasible,
		Strategy:       strategy.FirstSolution + "+" + strategy.Metaheuristic,
	}
}
