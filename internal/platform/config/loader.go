package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "CVRP_"
	configEnvVar = "CVRP_CONFIG_PATH"
)

// Loader loads the configuration from defaults, then an optional file, then
// environment overrides, in that priority order.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader builds a Loader with the default search paths.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/cvrp-optimizer/config.yaml",
		},
		envPrefix: envPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoaderOption customizes a Loader before Load runs.
type LoaderOption func(*Loader)

// WithConfigPaths overrides the list of candidate config file paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) { l.configPaths = paths }
}

// Load resolves the full configuration: defaults, then file (if found), then
// env overrides, unmarshaled into a Config. Keys that match no Config field
// are ignored; they are not reported as errors.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if err := l.loadConfigFile(); err != nil {
		fmt.Fprintf(os.Stderr, "config: no config file loaded: %v\n", err)
	}
	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		"routing.engine":                  "static",
		"routing.enable_time_dependent":   false,
		"routing.departure_time":          "08:00",
		"routing.request_timeout_seconds": 60,
		"routing.max_retries":             3,

		"locations.center_zone_radius_km":                   2.0,
		"locations.city_traffic_radius_km":                  5.0,
		"locations.city_traffic_duration_multiplier":        1.4,
		"locations.enable_city_traffic_adjustment":          true,
		"locations.external_bus_center_penalty_multiplier":  1.0,
		"locations.internal_bus_center_penalty_multiplier":  1.0,
		"locations.enable_center_zone_restrictions":         true,
		"locations.policy_capacity_cap":                     0,

		"cvrp.solver_type":                   "backend_b",
		"cvrp.time_limit_seconds":            30,
		"cvrp.allow_customer_skipping":       true,
		"cvrp.distance_penalty_disjunction":  100000.0,
		"cvrp.dropping_base_cost":            5000.0,
		"cvrp.dropping_demand_coefficient":   50.0,
		"cvrp.enable_parallel_solving":       false,
		"cvrp.num_workers":                  -1,
		"cvrp.lns_time_limit_seconds":        5,
		"cvrp.lns_num_nodes":                 30,
		"cvrp.lns_num_arcs":                  30,
		"cvrp.search_lambda_coefficient":     0.1,
		"cvrp.enable_final_depot_reconfiguration": false,
		"cvrp.center_zone_discount":          0.5,
		"cvrp.out_of_zone_penalty_meters":    40000.0,
		"cvrp.non_center_penalty_meters":     40000.0,
		"cvrp.random_seed":                   1,

		"cache.ttl_seconds": 86400,
		"cache.directory":   "./cache",
		"cache.backend":     "file",

		"log.level":        "info",
		"log.output":       "stdout",
		"log.max_size_mb":  100,
		"log.max_backups":  3,
		"log.max_age_days": 7,
		"log.compress":     true,

		"metrics.enabled":   false,
		"metrics.namespace": "cvrp_optimizer",

		"database.driver": "sqlite",
		"database.dsn":    "./cvrp.db",
	}
	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if path := os.Getenv(configEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return l.k.Load(file.Provider(path), yaml.Parser())
		}
	}
	for _, path := range l.configPaths {
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			return l.k.Load(file.Provider(abs), yaml.Parser())
		}
	}
	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, l.envPrefix)),
			"_", ".",
		)
	}), nil)
}

// Load is a convenience entry point using the default search paths.
func Load() (*Config, error) {
	return NewLoader().Load()
}
