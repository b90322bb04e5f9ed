package solver

import "context"

// StrategyParams names one (first-solution heuristic, local-search
// metaheuristic) pair drawn cyclically from the configured lists for one
// worker of a parallel multi-strategy run, plus a deterministic seed so
// each worker searches independently.
type StrategyParams struct {
	FirstSolution string
	Metaheuristic string
	WorkerSeed    int
}

// Backend is the contract both CVRP engines satisfy. Solve must respect
// ctx cancellation and Problem.Config.TimeLimitSeconds as a hard cap,
// returning its best candidate so far when the deadline fires rather than
// blocking past it.
type Backend interface {
	Solve(ctx context.Context, p Problem, strategy StrategyParams) (Candidate, error)
	Name() string
}
