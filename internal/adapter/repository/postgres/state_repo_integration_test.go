//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: DB_CONN_STR=... go test -tags integration ./internal/adapter/repository/postgres/
func TestStateRepository_Integration(t *testing.T) {
	connStr := os.Getenv("DB_CONN_STR")
	if connStr == "" {
		t.Skip("DB_CONN_STR not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, connStr)
	require.NoError(t, err)
	defer db.Close()

	repo := NewStateRepository(db)
	userID := "it-" + uuid.New().String()
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM ledger_states WHERE user_id = $1`, userID)
	})

	_, err = repo.Load(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)

	require.NoError(t, repo.Save(ctx, userID, []byte(`{"wallets":[],"transactions":[]}`)))
	require.NoError(t, repo.Save(ctx, userID, []byte(`{"wallets":[],"transactions":[],"categories":[]}`)))

	blob, err := repo.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, `{"wallets":[],"transactions":[],"categories":[]}`, string(blob))
}
