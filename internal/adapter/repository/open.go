// Package repository selects the ledger state store named by the configuration.
package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/simaogato/orbital-ledger/internal/adapter/repository/bolt"
	"github.com/simaogato/orbital-ledger/internal/adapter/repository/postgres"
	"github.com/simaogato/orbital-ledger/internal/adapter/repository/sqlite"
	"github.com/simaogato/orbital-ledger/internal/config"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// Store is a StateRepository that owns a connection or file handle
type Store interface {
	domain.StateRepository
	io.Closer
}

type postgresStore struct {
	domain.StateRepository
	db *postgres.DB
}

func (s postgresStore) Close() error {
	return s.db.Close()
}

// Open opens the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverBolt:
		store, err := bolt.New(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return store, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.DBConnStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgresStore{StateRepository: postgres.NewStateRepository(db), db: db}, nil

	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", domain.ErrInvalidInput, cfg.Driver)
	}
}
