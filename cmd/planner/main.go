// Command planner is the composition root: it loads configuration, wires
// concrete adapters behind ports, and either serves the HTTP API or runs
// one planning pass and exits, depending on RUN_MODE.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cvrp-optimizer/internal/adapters/cache"
	"cvrp-optimizer/internal/adapters/history"
	"cvrp-optimizer/internal/adapters/repositories"
	"cvrp-optimizer/internal/adapters/routing"
	"cvrp-optimizer/internal/api"
	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/platform/config"
	"cvrp-optimizer/internal/platform/db"
	"cvrp-optimizer/internal/platform/logger"
	"cvrp-optimizer/internal/platform/metrics"
	"cvrp-optimizer/internal/services/allocator"
	"cvrp-optimizer/internal/services/matrixbuilder"
	"cvrp-optimizer/internal/services/planner"
	"cvrp-optimizer/internal/services/solver"
	"cvrp-optimizer/internal/services/solver/backenda"
	"cvrp-optimizer/internal/services/solver/backendb"
	"cvrp-optimizer/internal/services/traffic"
	"cvrp-optimizer/internal/services/tsp"
)

// Exit codes. 0 is success; the rest let an operator or a calling script
// distinguish bad input from transient provider outages without parsing
// log lines.
const (
	exitOK                  = 0
	exitInvalidInput        = 2
	exitNoFeasibleSolution  = 3
	exitProviderUnavailable = 4
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "planner: no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "planner: load config: %v\n", err)
		os.Exit(exitInvalidInput)
	}

	logger.InitWithConfig(cfg.Log)
	if cfg.Metrics.Enabled {
		metrics.Init(cfg.Metrics.Namespace)
	}

	dbHandle, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Log.Error("open database failed", "err", err)
		os.Exit(exitInvalidInput)
	}
	defer dbHandle.Close()

	if err := repositories.InitSchema(dbHandle); err != nil {
		logger.Log.Error("init schema failed", "err", err)
		os.Exit(exitInvalidInput)
	}
	if seedPath := os.Getenv("SEED_PATH"); seedPath != "" {
		if err := repositories.SeedCustomersFromJSON(dbHandle, seedPath); err != nil {
			logger.Log.Warn("seed customers failed", "err", err, "path", seedPath)
		}
	}

	p, err := buildPlanner(cfg, dbHandle)
	if err != nil {
		logger.Log.Error("build planner failed", "err", err)
		os.Exit(exitInvalidInput)
	}

	if strings.EqualFold(os.Getenv("RUN_MODE"), "once") {
		os.Exit(runOnce(p))
	}

	serve(cfg, p)
}

// buildPlanner wires every pipeline stage's concrete adapter behind its
// port and returns the composed Planner.
func buildPlanner(cfg *config.Config, dbHandle *sql.DB) (*planner.Planner, error) {
	gateway, err := routing.New(cfg.Routing)
	if err != nil {
		return nil, fmt.Errorf("build routing gateway: %w", err)
	}

	matrixCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("build matrix cache: %w", err)
	}

	builder := matrixbuilder.New(matrixbuilder.DefaultConfig(), gateway, matrixCache, nil)

	backend, err := solver.NewBackend(cfg.CVRP.SolverType, backenda.New(), backendb.New())
	if err != nil {
		return nil, fmt.Errorf("build solver backend: %w", err)
	}

	customers := repositories.NewSQLiteCustomerRepository(dbHandle)
	runHistory := history.NewSQLRunHistoryRepository(dbHandle)

	plannerCfg := planner.Config{
		VehicleSpecs: cfg.VehicleSpecs(),
		Allocator: allocator.Config{
			CentralDepot:   cfg.Locations.CenterLocation.ToDomain(),
			PolicyCapUnits: cfg.Locations.PolicyCapacityCap,
		},
		MatrixBuilder: matrixbuilder.DefaultConfig(),
		Traffic:       trafficConfig(cfg.Locations),
		Solver:        solverConfig(cfg.CVRP, cfg.Locations),
		TSP: tsp.Config{
			Enabled: true,
		},
		DepartureSecond: departureSecond(cfg.Routing),
		CostingProfile:  cfg.Routing.Engine,
	}

	return planner.New(customers, builder, backend, runHistory, plannerCfg), nil
}

func trafficConfig(loc config.LocationsConfig) traffic.Config {
	if !loc.EnableCityTrafficAdjustment {
		return traffic.Config{}
	}
	return traffic.Config{
		Center:     loc.CityCenterCoords.ToDomain(),
		RadiusM:    loc.CityTrafficRadiusKM * 1000,
		Multiplier: loc.CityTrafficDurationMultiplier,
	}
}

func solverConfig(cvrp config.CVRPConfig, loc config.LocationsConfig) solver.Config {
	return solver.Config{
		SolverType:                      cvrp.SolverType,
		TimeLimitSeconds:                cvrp.TimeLimitSeconds,
		AllowCustomerSkipping:           cvrp.AllowCustomerSkipping,
		DistancePenaltyDisjoint:         int(cvrp.DistancePenaltyDisjunction),
		DropPenaltyBase:                 int(cvrp.DroppingBaseCost),
		DropPenaltyPerDemandUnit:        int(cvrp.DroppingDemandCoefficient),
		EnableParallelSolving:           cvrp.EnableParallelSolving,
		NumWorkers:                      cvrp.NumWorkers,
		EnableCenterZoneRestrictions:    loc.EnableCenterZoneRestrictions,
		CenterZoneRadiusMeters:          loc.CenterZoneRadiusKM * 1000,
		Center:                          loc.CenterLocation.ToDomain(),
		ExternalCenterPenaltyMult:       loc.ExternalBusCenterPenaltyMultiplier,
		InternalCenterPenaltyMult:       loc.InternalBusCenterPenaltyMultiplier,
		EnableFinalDepotReconfiguration: cvrp.EnableFinalDepotReconfiguration,
		FirstSolutionStrategies:         cvrp.FirstSolutionStrategies,
		Metaheuristics:                  cvrp.LocalSearchMetaheuristics,
	}
}

func departureSecond(r config.RoutingConfig) int {
	if !r.EnableTimeDependent || r.DepartureTime == "" {
		return -1
	}
	t, err := time.Parse("15:04", r.DepartureTime)
	if err != nil {
		return -1
	}
	return t.Hour()*3600 + t.Minute()*60
}

// runOnce executes a single planning pass and returns the process exit
// code, classifying the error into the documented exit codes rather than
// letting every failure collapse to a generic non-zero status.
func runOnce(p *planner.Planner) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := p.Plan(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInfeasibleProblem), errors.Is(err, domain.ErrSolverFailure):
			logger.Log.Error("planning run found no feasible solution", "err", err)
			return exitNoFeasibleSolution
		case errors.Is(err, domain.ErrProviderUnavailable):
			logger.Log.Error("routing provider unavailable", "err", err)
			return exitProviderUnavailable
		default:
			logger.Log.Error("planning run failed", "err", err)
			return exitInvalidInput
		}
	}

	logger.Log.Info("planning run complete",
		"routes", len(result.Solution.Routes),
		"dropped", len(result.Solution.Dropped),
		"degraded", result.Degraded,
		"backend", result.Backend,
	)
	return exitOK
}

func serve(cfg *config.Config, p *planner.Planner) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	router := api.NewRouter(p)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Log.Info("server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Log.Error("server stopped", "err", err)
		os.Exit(exitInvalidInput)
	}
}
