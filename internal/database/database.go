// Package database is the record store: the player registry and the
// performance table.
//
// We use sqlx over database/sql and write raw SQL. The same queries run on
// PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite); placeholders are written
// as `?` and rebound per driver.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers "sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrStore matches every StoreError via errors.Is.
var ErrStore = errors.New("record store failure")

// StoreError is returned when the store is unavailable or rejects a write.
// Callers treat it as fatal for the current file.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStore.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// DB wraps the sqlx connection with the record store operations.
type DB struct {
	*sqlx.DB

	// writeMu serializes ingestion transactions and resets so the
	// ensure-player + insert-if-absent sequence never interleaves.
	writeMu sync.Mutex
}

// New connects to the database and configures the pool for the driver.
func New(driver, databaseURL string) (*DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(time.Minute)
	}

	return &DB{DB: db}, nil
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// isSQLite reports whether the store runs on SQLite.
func (db *DB) isSQLite() bool {
	return db.DriverName() == DriverSQLite
}
