package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cvrp-optimizer/internal/api/dto"
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/platform/logger"
	"cvrp-optimizer/internal/services/planner"
)

// PlanHandler triggers one planning run against the wired pipeline and
// reports its outcome.
type PlanHandler struct {
	Planner *planner.Planner
}

// Plan runs ingest -> allocate -> matrix build -> solve -> TSP post-opt
// and returns the resulting routes. A request body is optional; when
// present it must be a single dto.PlanRequest object, but its fields are
// not applied: every run uses the server's loaded configuration.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && err != io.EOF {
			writeError(w, r, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
			return
		}
	}
	defer r.Body.Close()

	if h.Planner == nil {
		logger.Log.Error("plan handler has no planner wired")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	result, err := h.Planner.Plan(r.Context())
	if err != nil {
		status, msg := classifyPlanError(err)
		logger.Log.Error("plan run failed", "err", err, "status", status)
		writeError(w, r, status, msg)
		return
	}

	resp := dto.FromSolution(result.Solution, result.Degraded, result.RunID)
	writeJSON(w, r, http.StatusOK, resp)
}

// classifyPlanError maps a planner failure onto an HTTP status and a
// client-safe message, keeping internal error text out of responses.
func classifyPlanError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInfeasibleProblem):
		return http.StatusUnprocessableEntity, "no feasible solution exists for the given fleet and customers"
	case errors.Is(err, domain.ErrSolverFailure):
		return http.StatusInternalServerError, "solver backend failed to produce a solution"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "routing provider unavailable"
	case errors.Is(err, domain.ErrRequestTooLarge):
		return http.StatusUnprocessableEntity, "request exceeds provider limits"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
