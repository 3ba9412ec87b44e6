package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/reconciler"
)

// Converter converts an amount between two currencies.
// ok == false means no rate was available and amount is returned unconverted.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool)
}

// Engine owns one user's ledger and is the only writer of it.
// Every mutation works on a copy of the store, reconciles balances, persists the copy
// and only then swaps it in, so a failed operation leaves the store untouched.
//
// Operations that need a conversion rate release the lock while the rate provider is
// consulted and re-validate the wallets they reference before committing.
type Engine struct {
	UserID    string
	Converter Converter
	Repo      domain.StateRepository // Optional: nil keeps the ledger in memory only

	mu    sync.Mutex
	state *domain.LedgerState
	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the wall clock used for "today"
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the generator of wallet, transaction and rule IDs
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates a new Engine with an empty ledger for userID
func NewEngine(userID string, converter Converter, repo domain.StateRepository, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		UserID:    userID,
		Converter: converter,
		Repo:      repo,
		state:     domain.NewLedgerState(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		log:       log.With().Str("user_id", userID).Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the in-memory ledger with the persisted one and catches up recurring rules
// Logic:
//  1. Read the user's blob from the repository (missing blob = fresh ledger)
//  2. Decode it and reconcile balances
//  3. Run the recurring scheduler once
func (e *Engine) Load(ctx context.Context) error {
	state := domain.NewLedgerState()

	if e.Repo != nil {
		blob, err := e.Repo.Load(ctx, e.UserID)
		switch {
		case errors.Is(err, domain.ErrStateNotFound):
			e.log.Info().Msg("no stored ledger, starting fresh")
		case err != nil:
			return fmt.Errorf("failed to load ledger: %w", err)
		default:
			state, err = DecodeState(blob)
			if err != nil {
				return fmt.Errorf("failed to decode stored ledger: %w", err)
			}
		}
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()

	e.log.Info().
		Int("wallets", len(state.Wallets)).
		Int("transactions", len(state.Transactions)).
		Int("recurring", len(state.Recurring)).
		Msg("ledger loaded")

	if _, err := e.RunScheduler(ctx); err != nil {
		return err
	}
	return nil
}

// Snapshot returns a deep copy of the current ledger
func (e *Engine) Snapshot() *domain.LedgerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Wallets returns a copy of the wallets with their reconciled balances
func (e *Engine) Wallets() []domain.Wallet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Wallet{}, e.state.Wallets...)
}

// Transactions returns a copy of the transaction log, most recent first
func (e *Engine) Transactions() []domain.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Transaction{}, e.state.Transactions...)
}

// commit reconciles next, persists it and makes it the current ledger.
// Callers must hold e.mu.
func (e *Engine) commit(ctx context.Context, next *domain.LedgerState) error {
	next.Wallets = reconciler.Reconcile(next.Transactions, next.Wallets)

	if e.Repo != nil {
		blob, err := EncodeState(next)
		if err != nil {
			return fmt.Errorf("failed to encode ledger: %w", err)
		}
		if err := e.Repo.Save(ctx, e.UserID, blob); err != nil {
			return fmt.Errorf("failed to persist ledger: %w", err)
		}
	}

	e.state = next
	return nil
}

// findWallet returns a copy of the wallet, or ErrWalletNotFound
func (e *Engine) findWallet(id string) (domain.Wallet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.state.FindWallet(id)
	if w == nil {
		return domain.Wallet{}, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, id)
	}
	return *w, nil
}

func (e *Engine) today() domain.Date {
	return domain.DateOf(e.now())
}
