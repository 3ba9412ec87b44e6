package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/ledger"
	"github.com/simaogato/orbital-ledger/internal/usecase/reconciler"
)

// DemoUserID owns the demo ledger
const DemoUserID = "demo-user-id"

// Fixed IDs of the demo wallets
const (
	DemoWalletMain   = "w1"
	DemoWalletEuro   = "w2"
	DemoWalletBTC    = "w3"
	DemoWalletSolana = "w4"
)

// DemoSeeder writes the demo ledger once
type DemoSeeder struct {
	repo domain.StateRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(repo domain.StateRepository, now func() time.Time, log zerolog.Logger) *DemoSeeder {
	if now == nil {
		now = time.Now
	}
	return &DemoSeeder{
		repo: repo,
		now:  now,
		log:  log,
	}
}

// Seed ensures the demo user has a ledger.
// An existing demo ledger is never overwritten. Returns true if it wrote one.
func (s *DemoSeeder) Seed(ctx context.Context) (bool, error) {
	_, err := s.repo.Load(ctx, DemoUserID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrStateNotFound) {
		return false, fmt.Errorf("failed to check demo ledger: %w", err)
	}

	blob, err := ledger.EncodeState(DemoState(domain.DateOf(s.now())))
	if err != nil {
		return false, fmt.Errorf("failed to encode demo ledger: %w", err)
	}
	if err := s.repo.Save(ctx, DemoUserID, blob); err != nil {
		return false, fmt.Errorf("failed to save demo ledger: %w", err)
	}

	s.log.Info().Str("user_id", DemoUserID).Msg("demo ledger seeded")
	return true, nil
}

// DemoState builds the demo ledger with transactions dated relative to today
func DemoState(today domain.Date) *domain.LedgerState {
	yesterday := today.AddDays(-1)
	lastWeek := today.AddDays(-7)

	state := domain.NewLedgerState()
	state.Wallets = []domain.Wallet{
		{ID: DemoWalletMain, Name: "Main Ops", Kind: domain.WalletKindFiat, BaseCurrency: "USD", Color: "#CCFF00"},
		{ID: DemoWalletEuro, Name: "Euro Trip", Kind: domain.WalletKindFiat, BaseCurrency: "EUR", Color: "#00F0FF"},
		{ID: DemoWalletBTC, Name: "Cold Storage", Kind: domain.WalletKindCrypto, BaseCurrency: "BTC", Color: "#FF0099"},
		{ID: DemoWalletSolana, Name: "Solana Degen", Kind: domain.WalletKindCrypto, BaseCurrency: "SOL", Color: "#7000FF"},
	}

	tx := func(id, walletID string, date domain.Date, amount, currency, converted string, typ domain.TransactionType, category, description string) domain.Transaction {
		return domain.Transaction{
			ID:              id,
			UserID:          DemoUserID,
			WalletID:        walletID,
			Date:            date,
			Amount:          decimal.RequireFromString(amount),
			Currency:        currency,
			ConvertedAmount: decimal.RequireFromString(converted),
			Type:            typ,
			Category:        category,
			Description:     description,
		}
	}
	state.Transactions = []domain.Transaction{
		tx("t1", DemoWalletMain, today, "8500", "USD", "8500", domain.TransactionTypeIncome, "Salary", "Monthly Settlement"),
		tx("t2", DemoWalletMain, yesterday, "120", "USD", "120", domain.TransactionTypeExpense, "Tech", "Server Cluster"),
		tx("t3", DemoWalletEuro, lastWeek, "2000", "EUR", "2000", domain.TransactionTypeIncome, "Freelance", "EU Consulting"),
		tx("t4", DemoWalletBTC, lastWeek, "0.45", "BTC", "0.45", domain.TransactionTypeIncome, "Crypto", "Stacking Sats"),
		tx("t5", DemoWalletMain, today, "15500", "JPY", "105", domain.TransactionTypeExpense, "Food", "Tokyo Dinner"),
		tx("t6", DemoWalletSolana, yesterday, "50", "SOL", "50", domain.TransactionTypeIncome, "Crypto", "Airdrop"),
	}

	state.Wallets = reconciler.Reconcile(state.Transactions, state.Wallets)
	return state
}
