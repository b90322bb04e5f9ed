package routing

import (
	"fmt"
	"time"

	"cvrp-optimizer/internal/platform/config"
	"cvrp-optimizer/internal/ports"
)

// New builds the RoutingGateway selected by cfg.Engine.
func New(cfg config.RoutingConfig) (ports.RoutingGateway, error) {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	switch cfg.Engine {
	case "", "static":
		if cfg.StaticBaseURL == "" {
			return NewHaversineGateway(), nil
		}
		return NewStaticProvider(cfg.StaticBaseURL, 0, timeout, cfg.MaxRetries), nil
	case "time_dependent":
		if cfg.TimeDependentBaseURL == "" {
			return NewHaversineGateway(), nil
		}
		return NewTimeDependentProvider(cfg.TimeDependentBaseURL, "auto", 0, timeout, cfg.MaxRetries), nil
	default:
		return nil, fmt.Errorf("routing: unknown engine %q", cfg.Engine)
	}
}
