// Package db opens the database/sql handle backing run-history persistence.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open opens a connection pool for the given driver ("sqlite" or
// "postgres") and dsn, verifying connectivity before returning.
func Open(driver, dsn string) (*sql.DB, error) {
	driverName, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open %s database: %w", driver, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("db: verify %s connection: %w", driver, err)
	}

	return conn, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("db: unknown driver %q", driver)
	}
}
