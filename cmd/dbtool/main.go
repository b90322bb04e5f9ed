// Command dbtool initializes the schema, seeds customer data, and prints
// recent run history for operators managing the planner's database
// outside of the server process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"cvrp-optimizer/internal/adapters/history"
	"cvrp-optimizer/internal/adapters/repositories"
	"cvrp-optimizer/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var (
		driver   = flag.String("driver", envOr("DATABASE_DRIVER", "sqlite"), "database driver: sqlite or postgres")
		dsn      = flag.String("dsn", envOr("DATABASE_DSN", "./cvrp.db"), "database DSN")
		seedPath = flag.String("seed", envOr("SEED_PATH", ""), "path to a customer seed JSON file")
		listRuns = flag.Int("list-runs", 0, "print the N most recent run history records and exit")
	)
	flag.Parse()

	if strings.TrimSpace(*dsn) == "" {
		log.Fatal("dbtool: -dsn (or DATABASE_DSN) is required")
	}

	conn, err := db.Open(*driver, *dsn)
	if err != nil {
		log.Fatalf("dbtool: open database: %v", err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("dbtool: schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *seedPath != "" {
		log.Println("Seeding customers...")
		if err := repositories.SeedCustomersFromJSON(conn, *seedPath); err != nil {
			log.Fatalf("dbtool: seeding failed: %v", err)
		}
		log.Println("Seeding complete.")
	}

	if *listRuns > 0 {
		repo := history.NewSQLRunHistoryRepository(conn)
		runs, err := repo.ListRuns(context.Background(), *listRuns)
		if err != nil {
			log.Fatalf("dbtool: list runs failed: %v", err)
		}
		for _, r := range runs {
			fmt.Printf("run=%d backend=%s fitness=%.1f degraded=%t routed=%d dropped=%d at=%d\n",
				r.ID, r.Backend, r.Fitness, r.Degraded, r.RoutedCustomers, r.DroppedCount, r.CreatedAtUnix)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
