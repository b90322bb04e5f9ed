// Package history persists the audit trail of past planning runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cvrp-optimizer/internal/ports"
)

// SQLRunHistoryRepository is the database/sql-backed implementation of
// ports.RunHistoryRepository.
type SQLRunHistoryRepository struct{ DB *sql.DB }

// NewSQLRunHistoryRepository wraps an open database/sql handle.
func NewSQLRunHistoryRepository(db *sql.DB) *SQLRunHistoryRepository {
	return &SQLRunHistoryRepository{DB: db}
}

// SaveRun inserts a single run record and returns its assigned id.
func (r *SQLRunHistoryRepository) SaveRun(ctx context.Context, rec ports.RunRecord) (int64, error) {
	if r.DB == nil {
		return 0, errors.New("run history: DB is nil")
	}

	query := `
	INSERT INTO solution_runs (
		inputs_hash, backend, fitness, degraded,
		routed_customers, dropped_count, created_at_unix
	) VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	degraded := 0
	if rec.Degraded {
		degraded = 1
	}
	res, err := r.DB.ExecContext(ctx, query,
		rec.InputsHash, rec.Backend, rec.Fitness, degraded,
		rec.RoutedCustomers, rec.DroppedCount, rec.CreatedAtUnix,
	)
	if err != nil {
		return 0, fmt.Errorf("run history: insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run history: read inserted id: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first, bounded by limit.
func (r *SQLRunHistoryRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if r.DB == nil {
		return nil, errors.New("run history: DB is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, inputs_hash, backend, fitness, degraded,
	       routed_customers, dropped_count, created_at_unix
	FROM solution_runs
	ORDER BY created_at_unix DESC
	LIMIT ?;
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("run history: query runs: %w", err)
	}
	defer rows.Close()

	records := make([]ports.RunRecord, 0, limit)
	for rows.Next() {
		var rec ports.RunRecord
		var degraded int
		if err := rows.Scan(&rec.ID, &rec.InputsHash, &rec.Backend, &rec.Fitness, &degraded,
			&rec.RoutedCustomers, &rec.DroppedCount, &rec.CreatedAtUnix); err != nil {
			return nil, fmt.Errorf("run history: scan row: %w", err)
		}
		rec.Degraded = degraded != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run history: row iteration: %w", err)
	}

	return records, nil
}
