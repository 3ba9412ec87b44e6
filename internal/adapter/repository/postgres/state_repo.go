package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/orbital-ledger/internal/domain"
)

// stateRepository implements domain.StateRepository
type stateRepository struct {
	db *DB
}

// NewStateRepository creates a new ledger state repository
func NewStateRepository(db *DB) domain.StateRepository {
	return &stateRepository{db: db}
}

// Load retrieves the serialized ledger of a user
func (r *stateRepository) Load(ctx context.Context, userID string) ([]byte, error) {
	query := `
		SELECT payload
		FROM ledger_states
		WHERE user_id = $1
	`

	var payload string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	return []byte(payload), nil
}

// Save replaces the serialized ledger of a user
func (r *stateRepository) Save(ctx context.Context, userID string, blob []byte) error {
	query := `
		INSERT INTO ledger_states (user_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, string(blob)); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	return nil
}
