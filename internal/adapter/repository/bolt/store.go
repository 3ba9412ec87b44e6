package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/simaogato/orbital-ledger/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// BucketLedgers holds one serialized ledger per user ID.
const BucketLedgers = "ledgers"

var _ domain.StateRepository = (*Store)(nil)

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB
}

// New opens (or creates) the database file and initializes buckets.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketLedgers)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketLedgers, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load retrieves the serialized ledger of a user.
func (s *Store) Load(_ context.Context, userID string) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(BucketLedgers)).Get([]byte(userID))
		if v == nil {
			return fmt.Errorf("%w: %s", domain.ErrStateNotFound, userID)
		}
		// v is only valid inside the transaction
		blob = append([]byte(nil), v...)
		return nil
	})
	return blob, err
}

// Save replaces the serialized ledger of a user.
func (s *Store) Save(_ context.Context, userID string, blob []byte) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user ID", domain.ErrInvalidInput)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(BucketLedgers)).Put([]byte(userID), blob); err != nil {
			return fmt.Errorf("failed to save ledger: %w", err)
		}
		return nil
	})
}

// Users lists the user IDs that have a stored ledger.
func (s *Store) Users(_ context.Context) ([]string, error) {
	var users []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketLedgers)).ForEach(func(k, _ []byte) error {
			users = append(users, string(k))
			return nil
		})
	})
	return users, err
}
