package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/orbital-ledger/internal/config"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{
			name: "Bolt",
			cfg:  config.StoreConfig{Driver: config.DriverBolt, BoltPath: filepath.Join(dir, "ledger.db")},
		},
		{
			name: "SQLite",
			cfg:  config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "ledger.sqlite")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			store, err := Open(ctx, tt.cfg)
			require.NoError(t, err)
			defer store.Close()

			_, err = store.Load(ctx, "alice")
			assert.ErrorIs(t, err, domain.ErrStateNotFound)

			require.NoError(t, store.Save(ctx, "alice", []byte(`{"wallets":[],"transactions":[]}`)))
			blob, err := store.Load(ctx, "alice")
			require.NoError(t, err)
			assert.JSONEq(t, `{"wallets":[],"transactions":[]}`, string(blob))
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
