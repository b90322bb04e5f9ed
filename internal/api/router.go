// Package api composes the HTTP handlers, DTOs, and middleware that
// expose a Planner over the network.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cvrp-optimizer/internal/api/handlers"
	"cvrp-optimizer/internal/services/planner"
)

// NewRouter wires handlers with their dependencies and returns the
// composed http.Handler. This is the API composition root; handlers
// stay unaware of concrete adapters.
func NewRouter(p *planner.Planner) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{Planner: p}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.Handle("/metrics", promhttp.Handler())

	return loggingMiddleware(mux)
}
