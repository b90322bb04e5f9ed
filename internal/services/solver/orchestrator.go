package solver

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/platform/logger"
)

// Orchestrator dispatches a Problem to the configured backend, optionally
// running several strategies in parallel over independent deep copies of
// the problem, then selects a winner and falls back to the greedy
// algorithm if nothing feasible came back.
type Orchestrator struct {
	Backend Backend
}

// NewOrchestrator wires a single backend. The caller picks which backend
// to construct based on Config.SolverType.
func NewOrchestrator(backend Backend) *Orchestrator {
	return &Orchestrator{Backend: backend}
}

// Solve runs the configured backend (optionally in parallel multi-strategy
// mode), selects the winning candidate, and falls back to greedy assignment
// if no candidate is feasible. Returns a fully extracted domain.Solution.
func (o *Orchestrator) Solve(ctx context.Context, p Problem) (domain.Solution, error) {
	if len(p.Units) == 0 || len(p.Customers) == 0 {
		return domain.Solution{}, nil // InfeasibleProblem: not an error, see error handling design
	}

	deadline := time.Duration(p.Config.TimeLimitSeconds) * time.Second
	var cancel context.CancelFunc
	if deadline > 0 {
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	candidates := o.runStrategies(ctx, p)

	winner, ok := SelectWinner(p, candidates)
	degraded := false
	if !ok {
		logger.Log.Warn("no feasible candidate from backend, falling back to greedy", "backend", o.Backend.Name())
		winner = Greedy(p)
		degraded = true
	}

	return Extract(p, winner, degraded), nil
}

// runStrategies launches NumWorkers workers (default cores-1) when
// parallel solving is enabled, each with a (first-solution, metaheuristic)
// pair drawn cyclically from the configured lists and each on its own deep
// copy of the problem so there is no shared mutable state between workers.
// In serial mode it runs a single default strategy.
func (o *Orchestrator) runStrategies(ctx context.Context, p Problem) []Candidate {
	if !p.Config.EnableParallelSolving {
		c, err := o.Backend.Solve(ctx, p.clone(), StrategyParams{WorkerSeed: 0})
		if err != nil {
			logger.Log.Warn("solver backend failed", "backend", o.Backend.Name(), "err", err)
			return nil
		}
		c.Strategy = o.Backend.Name()
		c.SolutionID = "w0"
		return []Candidate{c}
	}

	workers := p.Config.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 1 {
		workers = 1
	}

	strategies := cyclicalStrategies(p.Config, workers)

	results := make([]Candidate, workers)
	ok := make([]bool, workers)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			c, err := o.Backend.Solve(ctx, p.clone(), strategies[idx])
			if err != nil {
				logger.Log.Warn("solver worker failed", "worker", idx, "err", err)
				return
			}
			c.Strategy = o.Backend.Name()
			c.SolutionID = "w" + strconv.Itoa(idx)
			results[idx] = c
			ok[idx] = true
		}(i)
	}
	wg.Wait()

	candidates := make([]Candidate, 0, workers)
	for i, present := range ok {
		if present {
			candidates = append(candidates, results[i])
		}
	}
	return candidates
}

func cyclicalStrategies(cfg Config, workers int) []StrategyParams {
	fs := cfg.FirstSolutionStrategies
	if len(fs) == 0 {
		fs = []string{"path_cheapest_arc"}
	}
	mh := cfg.Metaheuristics
	if len(mh) == 0 {
		mh = []string{"guided_local_search"}
	}

	out := make([]StrategyParams, workers)
	for i := 0; i < workers; i++ {
		out[i] = StrategyParams{
			FirstSolution: fs[i%len(fs)],
			Metaheuristic: mh[i%len(mh)],
			WorkerSeed:    i,
		}
	}
	return out
}

// clone returns a deep copy of Problem suitable for handing to an
// independent solver worker: the matrix is immutable and safe to share,
// but customers/units/config are copied so no worker can observe another
// worker's mutations.
func (p Problem) clone() Problem {
	customers := append([]domain.Customer(nil), p.Customers...)
	units := append([]domain.VehicleUnit(nil), p.Units...)
	cfg := p.Config
	return Problem{
		Customers: customers,
		Depots:    p.Depots,
		Units:     units,
		Matrix:    p.Matrix,
		Config:    cfg,
	}
}
