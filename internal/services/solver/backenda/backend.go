// Package backenda wraps github.com/nextmv-io/sdk/route as the
// constraint-programming metaheuristic CVRP engine: one routing model with
// capacity and shift-time (time budget) constraints, a per-vehicle arc-cost
// evaluator built from the center-zone profile, and each customer exposed
// as a disjunction priced at its dropping cost. Per-vehicle max-distance and
// max-stops limits are not passed to the router.
package backenda

import (
	"context"
	"strconv"
	"time"

	"github.com/nextmv-io/sdk/route"
	"github.com/nextmv-io/sdk/store"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/services/solver"
)

// Backend is the nextmv-backed CVRP engine.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "backend_a" }

func (b *Backend) Solve(ctx context.Context, p solver.Problem, strategy solver.StrategyParams) (solver.Candidate, error) {
	router, err := buildRouter(p)
	if err != nil {
		return solver.Candidate{}, err
	}

	opts := store.DefaultOptions()
	if p.Config.TimeLimitSeconds > 0 {
		opts.Limits.Duration = time.Duration(p.Config.TimeLimitSeconds) * time.Second
	} else {
		opts.Limits.Duration = 10 * time.Second
	}
	applyStrategyDiversity(&opts, strategy)

	nextmvSolver, err := router.Solver(opts)
	if err != nil {
		return solver.Candidate{}, err
	}

	last, err := runToCompletion(ctx, nextmvSolver)
	if err != nil {
		return solver.Candidate{}, err
	}

	return toCandidate(p, last, strategy), nil
}

// applyStrategyDiversity spreads the expansion-limit knob the SDK exposes
// across workers (by WorkerSeed) so a parallel multi-strategy run actually
// explores differently shaped searches per worker, since the first
// retrieved example set does not surface a direct heuristic-family
// selector for us to drive instead.
func applyStrategyDiversity(opts *store.Options, strategy solver.StrategyParams) {
	opts.Diagram.Expansion.Limit = 1 + strategy.WorkerSeed%3
}

// buildRouter translates a solver.Problem into a route.Router: one stop
// per customer, one vehicle per unit, capacity/services/shifts wired from
// the unit specs, and a per-vehicle arc-cost measure implementing the
// center-zone profile.
func buildRouter(p solver.Problem) (route.Router, error) {
	stops := make([]route.Stop, len(p.Customers))
	for i, c := range p.Customers {
		stops[i] = route.Stop{
			ID:       c.ID,
			Position: route.Position{Lon: c.Coordinate.Lon, Lat: c.Coordinate.Lat},
		}
	}

	vehicleIDs := make([]string, len(p.Units))
	starts := make([]route.Position, len(p.Units))
	ends := make([]route.Position, len(p.Units))
	quantities := make([]int, len(p.Customers))
	capacities := make([]int, len(p.Units))
	services := make([]route.Service, len(p.Customers))
	shifts := make([]route.TimeWindow, len(p.Units))
	penalties := make([]int, len(p.Customers))
	costMeasures := make([]route.ByIndex, len(p.Units))

	for i, c := range p.Customers {
		quantities[i] = c.DemandUnits
		penalties[i] = int(p.DropPenalty(i))
	}

	nodeToMatrix := buildNodeToMatrix(p)
	for u, unit := range p.Units {
		vehicleIDs[u] = unitID(unit)
		starts[u] = route.Position{Lon: unit.StartDepot.Lon, Lat: unit.StartDepot.Lat}
		ends[u] = starts[u]
		capacities[u] = unit.Spec.Capacity
		shifts[u] = route.TimeWindow{
			Start: time.Unix(int64(unit.Spec.StartMinuteOfDay*60), 0),
			End:   time.Unix(int64(unit.Spec.StartMinuteOfDay*60+unit.Spec.MaxTimeSeconds()), 0),
		}
		costMeasures[u] = arcCostMeasure{cost: solver.NewArcCost(p, unit.Spec.Class), nodeToMatrix: nodeToMatrix}
	}

	// route.Service is indexed per customer, not per (vehicle, customer),
	// so a fleet with mixed per-class service times can only feed the
	// search one approximate figure; the fleet's first enabled spec's
	// service time stands in here. Final per-route totals are always
	// recomputed from each winning route's actual vehicle in
	// solver.Extract, so this approximation only shapes the search, not
	// the reported numbers.
	defaultService := 0
	if len(p.Units) > 0 {
		defaultService = p.Units[0].Spec.ServiceSecondsPerStop()
	}
	for i, c := range p.Customers {
		services[i] = route.Service{ID: c.ID, Duration: defaultService}
	}

	router, err := route.NewRouter(
		stops,
		vehicleIDs,
		route.Starts(starts),
		route.Ends(ends),
		route.Capacity(quantities, capacities),
		route.Services(services),
		route.Shifts(shifts),
		route.Unassigned(penalties),
		route.ValueFunctionMeasures(costMeasures),
	)
	if err != nil {
		return nil, err
	}
	return router, nil
}

func unitID(unit domain.VehicleUnit) string {
	return string(unit.Spec.Class) + "-" + strconv.Itoa(unit.SpecIndex) + "-" + strconv.Itoa(unit.UnitIndex)
}

// runToCompletion drains the solver's solution stream (a channel of
// successively improving store.Solution values per the SDK's iterative
// search model), returning the last one observed before ctx is done or
// the stream closes — the SDK's own wall-clock budget (opts.Limits.Duration)
// is what actually bounds the search.
func runToCompletion(ctx context.Context, s store.Solver) (store.Solution, error) {
	var last store.Solution
	ch := s.Run(ctx)
	for sol := range ch {
		last = sol
	}
	return last, nil
}
