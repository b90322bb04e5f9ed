// Package planner wires every pipeline stage — ingest, matrix build,
// traffic adjustment, warehouse allocation, CVRP solving, and TSP
// post-optimization — into the single entry point a CLI or API handler
// calls to produce a domain.Solution for one run.
package planner

import (
	"context"
	"fmt"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
	"cvrp-optimizer/internal/services/allocator"
	"cvrp-optimizer/internal/services/matrixbuilder"
	"cvrp-optimizer/internal/services/solver"
	"cvrp-optimizer/internal/services/traffic"
	"cvrp-optimizer/internal/services/tsp"
)

// Config bundles the per-run knobs every stage needs, already translated
// out of the koanf-tagged platform/config shape so this package has no
// dependency on how configuration was loaded.
type Config struct {
	VehicleSpecs []domain.VehicleSpec

	Allocator     allocator.Config
	MatrixBuilder matrixbuilder.Config
	Traffic       traffic.Config
	Solver        solver.Config
	TSP           tsp.Config

	DepartureSecond int // -1 when the routing gateway should use a static profile
	CostingProfile  string
}

// Planner is the composed pipeline. All dependencies are injected so
// cmd/planner's composition root is the only place concrete adapters are
// chosen.
type Planner struct {
	customers ports.CustomerRepository
	builder   *matrixbuilder.Builder
	backend   solver.Backend
	history   ports.RunHistoryRepository // optional; nil disables run recording
	cfg       Config
}

// New wires a Planner. history may be nil if run recording is disabled.
func New(
	customers ports.CustomerRepository,
	builder *matrixbuilder.Builder,
	backend solver.Backend,
	history ports.RunHistoryRepository,
	cfg Config,
) *Planner {
	return &Planner{customers: customers, builder: builder, backend: backend, history: history, cfg: cfg}
}

// Result is a completed run's solution plus the inputs the caller needs
// to report alongside it.
type Result struct {
	Solution domain.Solution
	Degraded bool
	Backend  string
	RunID    int64 // 0 when run history is disabled
}

// Plan runs the full pipeline once. The returned error is always one of
// the domain sentinel errors (ErrInfeasibleProblem, ErrSolverFailure,
// ErrProviderUnavailable) or a wrapped lower-level error; cmd/planner maps
// these to process exit codes.
func (p *Planner) Plan(ctx context.Context) (Result, error) {
	customers, err := p.customers.ListCustomers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("planner: list customers: %w", err)
	}

	depots := domain.NewDepotSet(p.cfg.VehicleSpecs)
	units := domain.ExpandFleet(p.cfg.VehicleSpecs, depots.IndexOf)
	if len(units) == 0 {
		return Result{}, fmt.Errorf("planner: no enabled vehicles: %w", domain.ErrInfeasibleProblem)
	}

	alloc := allocator.Allocate(customers, p.cfg.VehicleSpecs, p.cfg.Allocator)
	if len(alloc.Serviceable) == 0 {
		return Result{}, fmt.Errorf("planner: no serviceable customers after allocation: %w", domain.ErrInfeasibleProblem)
	}

	locations := make([]domain.Coordinate, 0, depots.Len()+len(alloc.Serviceable))
	locations = append(locations, depots.Coordinates()...)
	for _, c := range alloc.Serviceable {
		locations = append(locations, c.Coordinate)
	}

	rawMatrix, err := p.builder.Build(ctx, locations, p.cfg.DepartureSecond, p.cfg.CostingProfile)
	if err != nil {
		return Result{}, fmt.Errorf("planner: build matrix: %w", err)
	}

	adjusted := traffic.Adjust(rawMatrix, p.cfg.Traffic)

	problem := solver.Problem{
		Customers: alloc.Serviceable,
		Depots:    depots,
		Units:     units,
		Matrix:    adjusted,
		Config:    p.cfg.Solver,
	}

	orchestrator := solver.NewOrchestrator(p.backend)
	sol, err := orchestrator.Solve(ctx, problem)
	if err != nil {
		return Result{}, fmt.Errorf("planner: solve: %w", err)
	}
	if len(sol.Routes) == 0 && len(problem.Customers) > 0 {
		return Result{}, fmt.Errorf("planner: %w", domain.ErrSolverFailure)
	}

	for _, c := range alloc.Warehouse {
		sol.Dropped = append(sol.Dropped, c.ID)
	}

	if p.cfg.TSP.Enabled {
		optimizer := tsp.New(adjusted, depots, p.cfg.TSP)
		sol = optimizer.Optimize(sol, units, alloc.Serviceable)
	}

	result := Result{Solution: sol, Degraded: sol.Degraded || rawMatrix.DegradedCount() > 0, Backend: sol.Strategy}

	if p.history != nil {
		runID, recErr := p.history.SaveRun(ctx, ports.RunRecord{
			Backend:         sol.Strategy,
			Fitness:         sol.Fitness,
			Degraded:        result.Degraded,
			RoutedCustomers: sol.RoutedCustomerCount(),
			DroppedCount:    len(sol.Dropped),
			CreatedAtUnix:   time.Now().Unix(),
		})
		if recErr == nil {
			result.RunID = runID
		}
	}

	return result, nil
}
