package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cvrp-optimizer/internal/domain"
)

// SQLiteCustomerRepository is the SQL-backed implementation of
// ports.CustomerRepository, shared between the sqlite and postgres drivers
// since both speak database/sql.
type SQLiteCustomerRepository struct{ DB *sql.DB }

// NewSQLiteCustomerRepository wraps an open database/sql handle.
func NewSQLiteCustomerRepository(db *sql.DB) *SQLiteCustomerRepository {
	return &SQLiteCustomerRepository{DB: db}
}

// ListCustomers returns every customer row, in id order.
func (r *SQLiteCustomerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	if r.DB == nil {
		return nil, errors.New("customer repository: DB is nil")
	}

	query := `
	SELECT customer_id, name, lat, lon, demand_units
	FROM customers
	ORDER BY customer_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: query customers table: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Coordinate.Lat, &c.Coordinate.Lon, &c.DemandUnits); err != nil {
			return nil, fmt.Errorf("list customers: scan row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: row iteration: %w", err)
	}

	return customers, nil
}
