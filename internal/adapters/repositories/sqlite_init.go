package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// InitSchema creates every table the repositories in this package need, if
// they do not already exist.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		demand_units INTEGER NOT NULL
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS solution_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		inputs_hash TEXT NOT NULL,
		backend TEXT NOT NULL,
		fitness REAL NOT NULL,
		degraded INTEGER NOT NULL,
		routed_customers INTEGER NOT NULL,
		dropped_count INTEGER NOT NULL,
		created_at_unix INTEGER NOT NULL
	);
	`

	createRunsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_solution_runs_created_at
	ON solution_runs(created_at_unix);
	`

	statements := []string{createCustomersQuery, createRunsQuery, createRunsIndexQuery}
	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}

// CustomerSeed is the JSON shape accepted by SeedCustomersFromJSON.
type CustomerSeed struct {
	CustomerID  string  `json:"customer_id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DemandUnits int     `json:"demand_units"`
}

// SeedCustomersFromJSON populates the customers table from a JSON file,
// replacing any existing row with the same id.
func SeedCustomersFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed customers: read %q: %w", jsonPath, err)
	}

	var rows []CustomerSeed
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("seed customers: parse json: %w", err)
	}

	for i, r := range rows {
		if strings.TrimSpace(r.CustomerID) == "" {
			return fmt.Errorf("seed customers: item at index %d: customer_id cannot be empty", i+1)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed customers: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO customers (customer_id, name, lat, lon, demand_units)
	VALUES (?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed customers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.CustomerID, r.Name, r.Lat, r.Lon, r.DemandUnits); err != nil {
			return fmt.Errorf("seed customers: insert customer_id=%s: %w", r.CustomerID, err)
		}
	}

	return tx.Commit()
}
