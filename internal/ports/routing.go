package ports

import (
	"context"

	"cvrp-optimizer/internal/domain"
)

// MatrixRequest describes one distance/duration matrix build: an ordered
// list of locations (depots first, then customers), an optional departure
// time for time-dependent providers, and a costing profile name.
type MatrixRequest struct {
	Locations       []domain.Coordinate
	DepartureSecond int // -1 when the provider should use a static/typical profile
	CostingProfile  string
}

// RoutingGateway builds distance/duration matrices from a road-network
// provider. Implementations may be a live HTTP provider, a mock, or a pure
// haversine estimator used as a last-resort fallback.
//
// BuildMatrix returns domain.ErrRequestTooLarge when the request exceeds the
// provider's size limits (the caller is expected to tile/chunk and retry),
// domain.ErrProviderUnavailable when the provider could not be reached after
// retries, and domain.ErrPartialMatrix when the provider answered but left
// some cells unset (the caller fills those with the haversine fallback).
type RoutingGateway interface {
	BuildMatrix(ctx context.Context, req MatrixRequest) (*domain.Matrix, error)

	// Name identifies the gateway for logging, metrics, and cache keys.
	Name() string

	// MaxLocationsPerCall reports the largest single request this gateway
	// accepts before the caller must tile the request. Zero means unbounded.
	MaxLocationsPerCall() int
}
