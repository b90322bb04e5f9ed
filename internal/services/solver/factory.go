package solver

import "fmt"

// NewBackend constructs the configured backend. Kept free of the
// backenda/backendb import cycle by taking already-constructed
// implementations from the caller — see cmd/planner's composition root.
func NewBackend(solverType string, a, b Backend) (Backend, error) {
	switch solverType {
	case "", "backend_a":
		return a, nil
	case "backend_b":
		return b, nil
	default:
		return nil, fmt.Errorf("solver: unknown solver_type %q", solverType)
	}
}
