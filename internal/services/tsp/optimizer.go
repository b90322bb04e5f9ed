// Package tsp re-sequences a finished route's customer order around its
// vehicle's declared TSP origin, independently of whichever CVRP backend
// produced the route. It wraps github.com/katalvlaran/lvlath/tsp
// (Held-Karp for small routes, Christofides + 2-opt otherwise) with a
// nearest-neighbor fallback for when the library solver errs. A route's
// original order is kept unless the new order is strictly shorter.
package tsp

import (
	"fmt"
	"sort"
	"time"

	lvmatrix "github.com/katalvlaran/lvlath/matrix"
	lvtsp "github.com/katalvlaran/lvlath/tsp"

	"cvrp-optimizer/internal/domain"
)

// Config carries the knobs the post-optimizer needs from the run's
// configuration.
type Config struct {
	// Enabled gates the whole stage; when false, Optimize returns routes
	// unchanged.
	Enabled bool

	// ForceReconfiguration re-sequences every route even when a vehicle's
	// TSP origin equals its start depot (normally a no-op case).
	ForceReconfiguration bool

	// HeldKarpMaxN is the largest origin+customers count the exact
	// Held-Karp solver is attempted for; above it Christofides+2-opt runs
	// instead, since Held-Karp's 2^n memory makes it impractical past
	// roughly a dozen stops.
	HeldKarpMaxN int

	// PerRouteBudget bounds the wall-clock time the library solver is
	// allowed to spend on a single route before its own time-limit
	// sentinel kicks in and the nearest-neighbor fallback takes over.
	PerRouteBudget time.Duration
}

// DefaultConfig mirrors the library's own DefaultOptions conservatism:
// Held-Karp only for very small routes, a modest per-route time budget.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		HeldKarpMaxN:   12,
		PerRouteBudget: 2 * time.Second,
	}
}

// Optimizer re-sequences routes against a shared adjusted matrix.
type Optimizer struct {
	matrix *domain.Matrix
	depots *domain.DepotSet
	cfg    Config
}

// New builds an Optimizer over the given matrix (depot nodes 0..D-1,
// customer nodes D..D+C-1, the same convention services/solver uses).
func New(matrix *domain.Matrix, depots *domain.DepotSet, cfg Config) *Optimizer {
	return &Optimizer{matrix: matrix, depots: depots, cfg: cfg}
}

// Optimize re-sequences every route in sol whose vehicle's TSP origin
// warrants it, replacing each with the shorter of its original order or
// the resequenced one. customers must be in the same order the matrix's
// customer block was built from (node = depots.Len()+index), matching
// services/solver.Problem.CustomerNode's convention. Routes are matched
// back to their owning unit by (VehicleSpecIndex, VehicleUnitIndex).
func (o *Optimizer) Optimize(sol domain.Solution, units []domain.VehicleUnit, customers []domain.Customer) domain.Solution {
	if !o.cfg.Enabled {
		return sol
	}

	unitByKey := make(map[[2]int]domain.VehicleUnit, len(units))
	for _, u := range units {
		unitByKey[[2]int{u.SpecIndex, u.UnitIndex}] = u
	}
	nodeByID := make(map[string]int, len(customers))
	for i, c := range customers {
		nodeByID[c.ID] = o.depots.Len() + i
	}

	out := sol
	out.Routes = make([]domain.Route, len(sol.Routes))
	for i, r := range sol.Routes {
		unit, ok := unitByKey[[2]int{r.VehicleSpecIndex, r.VehicleUnitIndex}]
		if !ok || len(r.Stops) < 2 {
			out.Routes[i] = r
			continue
		}
		if unit.TSPOrigin == unit.StartDepot && !o.cfg.ForceReconfiguration {
			out.Routes[i] = r
			continue
		}
		out.Routes[i] = o.resequence(r, unit, nodeByID)
	}
	out.Recompute()
	return out
}

// resequence re-solves a single route's visiting order from its origin,
// accepting the new order only if strictly shorter over the real matrix;
// on any solver failure it falls back to nearest-neighbor, and on that
// failing too (or producing no improvement) the original order is kept.
func (o *Optimizer) resequence(r domain.Route, unit domain.VehicleUnit, nodeByID map[string]int) domain.Route {
	originNode, ok := o.depots.Lookup(unit.TSPOrigin)
	if !ok {
		originNode = unit.StartNode
	}

	custNodes := make([]int, 0, len(r.Stops))
	for _, s := range r.Stops {
		n, ok := nodeByID[s.CustomerID]
		if !ok {
			return r // unresolvable stop id; leave the route untouched
		}
		custNodes = append(custNodes, n)
	}

	originalCost := openTourCost(o.matrix, originNode, custNodes)

	order, cost, err := o.solveTour(originNode, custNodes)
	if err != nil || order == nil {
		order, cost = nearestNeighborTour(o.matrix, originNode, custNodes)
	}
	if order == nil || cost >= originalCost {
		return r
	}

	return rebuildRoute(o.matrix, r, unit, originNode, order, nodeByID)
}

// solveTour runs the library dispatcher over a local index space built
// from [origin, customers...] and translates the result back to matrix
// node order, reporting the closed-tour cost the library itself computed.
func (o *Optimizer) solveTour(originNode int, custNodes []int) (order []int, cost float64, err error) {
	nodes := make([]int, 0, len(custNodes)+1)
	nodes = append(nodes, originNode)
	nodes = append(nodes, custNodes...)
	n := len(nodes)

	dist, buildErr := buildLocalMatrix(o.matrix, nodes)
	if buildErr != nil {
		return nil, 0, buildErr
	}

	opts := lvtsp.DefaultOptions()
	opts.StartVertex = 0
	opts.TimeLimit = o.cfg.PerRouteBudget
	if n <= o.cfg.HeldKarpMaxN {
		opts.Algo = lvtsp.ExactHeldKarp
	} else {
		opts.Algo = lvtsp.Christofides
	}

	res, solveErr := lvtsp.SolveWithMatrix(dist, nil, opts)
	if solveErr != nil {
		return nil, 0, solveErr
	}

	// res.Tour is local indices [0..n-1] closed back to Tour[0]; drop the
	// closing repeat and the leading origin to recover customer order.
	localOrder := res.Tour[1 : len(res.Tour)-1]
	order = make([]int, len(localOrder))
	for i, li := range localOrder {
		order[i] = nodes[li]
	}
	return order, res.Cost, nil
}

// buildLocalMatrix projects the real matrix's distances for nodes into a
// dense tsp-library matrix in local index order.
func buildLocalMatrix(m *domain.Matrix, nodes []int) (*lvmatrix.Dense, error) {
	n := len(nodes)
	dense, err := lvmatrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("tsp: allocate local matrix: %w", err)
	}
	for i, ni := range nodes {
		for j, nj := range nodes {
			if i == j {
				continue
			}
			if err := dense.Set(i, j, float64(m.Distance(ni, nj))); err != nil {
				return nil, fmt.Errorf("tsp: set local matrix cell (%d,%d): %w", i, j, err)
			}
		}
	}
	return dense, nil
}

// openTourCost sums the real-matrix distance for origin -> customers in
// the given order -> back to origin (the closed-tour metric the library
// itself optimizes against).
func openTourCost(m *domain.Matrix, originNode int, custNodes []int) float64 {
	var total int64
	prev := originNode
	for _, n := range custNodes {
		total += m.Distance(prev, n)
		prev = n
	}
	total += m.Distance(prev, originNode)
	return float64(total)
}

// nearestNeighborTour is the deterministic fallback: repeatedly step to
// the nearest unvisited customer from the current position, tie-breaking
// by matrix node index for determinism.
func nearestNeighborTour(m *domain.Matrix, originNode int, custNodes []int) ([]int, float64) {
	remaining := append([]int(nil), custNodes...)
	sort.Ints(remaining)

	order := make([]int, 0, len(custNodes))
	current := originNode
	var total int64
	for len(remaining) > 0 {
		bestIdx := -1
		var bestDist int64 = -1
		for i, n := range remaining {
			d := m.Distance(current, n)
			if bestIdx == -1 || d < bestDist {
				bestIdx, bestDist = i, d
			}
		}
		next := remaining[bestIdx]
		total += bestDist
		order = append(order, next)
		current = next
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	total += m.Distance(current, originNode)
	return order, float64(total)
}

// rebuildRoute applies a new customer node order to r, recomputing every
// arrival/depart clock, distance, and duration from the real matrix,
// mirroring services/solver.Extract's buildRoute.
func rebuildRoute(m *domain.Matrix, r domain.Route, unit domain.VehicleUnit, originNode int, order []int, nodeByID map[string]int) domain.Route {
	idByNode := make(map[int]string, len(nodeByID))
	for id, n := range nodeByID {
		idByNode[n] = id
	}

	out := r
	out.Stops = make([]domain.Stop, 0, len(order))

	clock := unit.Spec.StartMinuteOfDay * 60
	serviceSecs := unit.Spec.ServiceSecondsPerStop()
	prevNode := unit.StartNode
	var distance, duration int64

	// Leg from the physical start depot to the TSP origin, when distinct.
	if originNode != prevNode {
		distance += m.Distance(prevNode, originNode)
		duration += m.Duration(prevNode, originNode)
		clock += int(m.Duration(prevNode, originNode))
		prevNode = originNode
	}

	for _, node := range order {
		legDist := m.Distance(prevNode, node)
		legDur := m.Duration(prevNode, node)
		distance += legDist
		duration += legDur
		clock += int(legDur)

		arrival := clock
		clock += serviceSecs
		depart := clock

		id := idByNode[node]
		out.Stops = append(out.Stops, domain.Stop{
			CustomerID:    id,
			ArrivalSecond: arrival,
			DepartSecond:  depart,
		})
		prevNode = node
	}

	distance += m.Distance(prevNode, unit.EndNode)
	duration += m.Duration(prevNode, unit.EndNode)

	out.DistanceMeters = distance
	out.DurationSecs = duration
	// DemandUnits is unchanged by re-sequencing: same stops, same demand.
	return out
}
