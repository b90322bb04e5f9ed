// Package config defines the closed configuration record for the planner
// and the loader that fills it from defaults, an optional YAML file, and
// environment variable overrides.
package config

import "cvrp-optimizer/internal/domain"

// Config is the root configuration record. Every field maps to an option
// enumerated for the planner; there is no dynamic/ad-hoc key lookup anywhere
// downstream of Load.
type Config struct {
	Routing   RoutingConfig   `koanf:"routing"`
	Locations LocationsConfig `koanf:"locations"`
	Vehicles  []VehicleConfig `koanf:"vehicles"`
	CVRP      CVRPConfig      `koanf:"cvrp"`
	Cache     CacheConfig     `koanf:"cache"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Database  DatabaseConfig  `koanf:"database"`
}

// RoutingConfig selects and tunes the routing gateway.
type RoutingConfig struct {
	Engine              string `koanf:"engine"` // "static" or "time_dependent"
	EnableTimeDependent bool   `koanf:"enable_time_dependent"`
	DepartureTime       string `koanf:"departure_time"` // "HH:MM"
	StaticBaseURL       string `koanf:"static_base_url"`
	TimeDependentBaseURL string `koanf:"time_dependent_base_url"`
	RequestTimeoutSeconds int  `koanf:"request_timeout_seconds"`
	MaxRetries          int    `koanf:"max_retries"`
}

// LocationsConfig carries the center-zone and urban-traffic geometry.
type LocationsConfig struct {
	CenterLocation                     CoordConfig `koanf:"center_location"`
	CenterZoneRadiusKM                 float64     `koanf:"center_zone_radius_km"`
	CityCenterCoords                   CoordConfig `koanf:"city_center_coords"`
	CityTrafficRadiusKM                float64     `koanf:"city_traffic_radius_km"`
	CityTrafficDurationMultiplier      float64     `koanf:"city_traffic_duration_multiplier"`
	EnableCityTrafficAdjustment        bool        `koanf:"enable_city_traffic_adjustment"`
	ExternalBusCenterPenaltyMultiplier float64     `koanf:"external_bus_center_penalty_multiplier"`
	InternalBusCenterPenaltyMultiplier float64     `koanf:"internal_bus_center_penalty_multiplier"`
	EnableCenterZoneRestrictions       bool        `koanf:"enable_center_zone_restrictions"`
	PolicyCapacityCap                 int         `koanf:"policy_capacity_cap"`
}

// CoordConfig is the koanf-friendly shape of a lat/lon pair.
type CoordConfig struct {
	Lat float64 `koanf:"lat"`
	Lon float64 `koanf:"lon"`
}

// ToDomain converts a CoordConfig to a domain.Coordinate.
func (c CoordConfig) ToDomain() domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat, Lon: c.Lon}
}

// VehicleConfig is the koanf-tagged shape of one VehicleSpec.
type VehicleConfig struct {
	Class                 string      `koanf:"class"`
	Capacity              int         `koanf:"capacity"`
	FleetCount            int         `koanf:"fleet_count"`
	MaxDistanceMeters     int         `koanf:"max_distance_meters"`
	MaxTimeMinutes        int         `koanf:"max_time_minutes"`
	ServiceMinutesPerStop int         `koanf:"service_minutes_per_stop"`
	StartMinuteOfDay      int         `koanf:"start_minute_of_day"`
	MaxStops              int         `koanf:"max_stops"`
	Enabled               bool        `koanf:"enabled"`
	StartDepot            CoordConfig `koanf:"start_depot"`
	TSPOrigin             CoordConfig `koanf:"tsp_origin"`
}

// ToDomain converts a VehicleConfig to a domain.VehicleSpec.
func (v VehicleConfig) ToDomain() domain.VehicleSpec {
	spec := domain.VehicleSpec{
		Class:                 domain.VehicleClass(v.Class),
		Capacity:              v.Capacity,
		FleetCount:            v.FleetCount,
		MaxDistanceMeters:     v.MaxDistanceMeters,
		MaxTimeMinutes:        v.MaxTimeMinutes,
		ServiceMinutesPerStop: v.ServiceMinutesPerStop,
		StartMinuteOfDay:      v.StartMinuteOfDay,
		MaxStops:              v.MaxStops,
		Enabled:               v.Enabled,
		StartDepot:            v.StartDepot.ToDomain(),
		TSPOrigin:             v.TSPOrigin.ToDomain(),
	}
	spec.Normalize()
	return spec
}

// CVRPConfig tunes the solver orchestrator and both backends.
type CVRPConfig struct {
	SolverType                     string   `koanf:"solver_type"` // "backend_a" or "backend_b"
	TimeLimitSeconds               int      `koanf:"time_limit_seconds"`
	AllowCustomerSkipping          bool     `koanf:"allow_customer_skipping"`
	DistancePenaltyDisjunction     float64  `koanf:"distance_penalty_disjunction"`
	DroppingBaseCost               float64  `koanf:"dropping_base_cost"`
	DroppingDemandCoefficient      float64  `koanf:"dropping_demand_coefficient"`
	EnableParallelSolving          bool     `koanf:"enable_parallel_solving"`
	NumWorkers                     int      `koanf:"num_workers"` // -1 = cores-1
	FirstSolutionStrategies        []string `koanf:"first_solution_strategies"`
	LocalSearchMetaheuristics      []string `koanf:"local_search_metaheuristics"`
	LNSTimeLimitSeconds            int      `koanf:"lns_time_limit_seconds"`
	LNSNumNodes                    int      `koanf:"lns_num_nodes"`
	LNSNumArcs                     int      `koanf:"lns_num_arcs"`
	SearchLambdaCoefficient        float64  `koanf:"search_lambda_coefficient"`
	EnableFinalDepotReconfiguration bool    `koanf:"enable_final_depot_reconfiguration"`
	CenterZoneDiscount              float64 `koanf:"center_zone_discount"`
	OutOfZonePenaltyMeters           float64 `koanf:"out_of_zone_penalty_meters"`
	NonCenterPenaltyMeters           float64 `koanf:"non_center_penalty_meters"`
	RandomSeed                      int64   `koanf:"random_seed"`
}

// CacheConfig tunes the matrix build cache.
type CacheConfig struct {
	TTLSeconds int    `koanf:"ttl_seconds"`
	Directory  string `koanf:"directory"`
	Backend    string `koanf:"backend"` // "file", "memory", "redis"
	RedisAddr  string `koanf:"redis_addr"`
}

// LogConfig mirrors the options the logger package reads.
type LogConfig struct {
	Level      string `koanf:"level"`
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig tunes the prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
}

// DatabaseConfig tunes run-history persistence.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // "sqlite" or "postgres"
	DSN    string `koanf:"dsn"`
}

// VehicleSpecs converts every configured vehicle into a domain.VehicleSpec.
func (c Config) VehicleSpecs() []domain.VehicleSpec {
	specs := make([]domain.VehicleSpec, len(c.Vehicles))
	for i, v := range c.Vehicles {
		specs[i] = v.ToDomain()
	}
	return specs
}
