package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/simaogato/orbital-ledger/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_states (
	user_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

var _ domain.StateRepository = (*Store)(nil)

// Store keeps one serialized ledger per user in a SQLite file.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens a SQLite database connection and initializes the schema.
// It enables WAL mode for better concurrency.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Load retrieves the serialized ledger of a user.
func (s *Store) Load(ctx context.Context, userID string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM ledger_states WHERE user_id = ?`, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return []byte(payload), nil
}

// Save replaces the serialized ledger of a user.
func (s *Store) Save(ctx context.Context, userID string, blob []byte) error {
	query := `
		INSERT INTO ledger_states (user_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, userID, string(blob), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// Users lists the user IDs that have a stored ledger.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM ledger_states ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}
