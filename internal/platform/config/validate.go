package config

import "fmt"

// Validate rejects configurations that cannot possibly produce a usable
// run: unknown enum values or a fleet with no vehicles configured at all.
// Per-vehicle consistency (capacity > 0, etc.) is the allocator's and the
// solver's job at run time, since it depends on which vehicles are enabled.
func (c Config) Validate() error {
	switch c.Routing.Engine {
	case "static", "time_dependent":
	default:
		return fmt.Errorf("routing.engine: unknown value %q", c.Routing.Engine)
	}

	switch c.CVRP.SolverType {
	case "backend_a", "backend_b":
	default:
		return fmt.Errorf("cvrp.solver_type: unknown value %q", c.CVRP.SolverType)
	}

	switch c.Cache.Backend {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend: unknown value %q", c.Cache.Backend)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unknown value %q", c.Database.Driver)
	}

	if len(c.Vehicles) == 0 {
		return fmt.Errorf("vehicles: at least one vehicle record must be configured")
	}

	return nil
}
