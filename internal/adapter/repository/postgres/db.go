package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_states (
	user_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection and makes sure the schema exists
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=orbital_ledger sslmode=disable"
func NewDB(ctx context.Context, connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := pingWithRetry(ctx, db, 5, time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{DB: db}, nil
}

// pingWithRetry waits for Postgres to accept connections (container start-up)
func pingWithRetry(ctx context.Context, db *sql.DB, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
