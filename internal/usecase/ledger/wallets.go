package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// AddWalletInput holds the fields of a new wallet
type AddWalletInput struct {
	Name         string
	Kind         domain.WalletKind
	BaseCurrency string
	Color        string
	Icon         string
}

// UpdateWalletInput holds the editable wallet fields. Nil means unchanged.
// Kind and base currency are fixed once a wallet exists.
type UpdateWalletInput struct {
	Name  *string
	Color *string
	Icon  *string
}

// AddWallet creates a wallet with a zero balance
func (e *Engine) AddWallet(ctx context.Context, input AddWalletInput) (*domain.Wallet, error) {
	wallet := domain.Wallet{
		ID:           e.newID(),
		Name:         strings.TrimSpace(input.Name),
		Kind:         input.Kind,
		BaseCurrency: domain.NormalizeCurrency(input.BaseCurrency),
		Balance:      decimal.Zero,
		Color:        input.Color,
		Icon:         input.Icon,
	}
	if err := wallet.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()
	next.Wallets = append(next.Wallets, wallet)
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.log.Info().Str("wallet_id", wallet.ID).Str("currency", wallet.BaseCurrency).Msg("wallet added")
	return &wallet, nil
}

// UpdateWallet changes the display fields of a wallet
func (e *Engine) UpdateWallet(ctx context.Context, id string, input UpdateWalletInput) (*domain.Wallet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()
	wallet := next.FindWallet(id)
	if wallet == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, id)
	}

	if input.Name != nil {
		wallet.Name = strings.TrimSpace(*input.Name)
	}
	if input.Color != nil {
		wallet.Color = *input.Color
	}
	if input.Icon != nil {
		wallet.Icon = *input.Icon
	}
	if err := wallet.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	updated := *wallet

	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteWallet removes a wallet together with its transactions and recurring rules
func (e *Engine) DeleteWallet(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.FindWallet(id) == nil {
		return fmt.Errorf("%w: %s", domain.ErrWalletNotFound, id)
	}

	next := e.state.Clone()
	next.Wallets = next.Wallets[:0]
	for _, w := range e.state.Wallets {
		if w.ID != id {
			next.Wallets = append(next.Wallets, w)
		}
	}
	next.Transactions = next.Transactions[:0]
	for _, tx := range e.state.Transactions {
		if tx.WalletID != id {
			next.Transactions = append(next.Transactions, tx)
		}
	}
	next.Recurring = next.Recurring[:0]
	for _, r := range e.state.Recurring {
		if r.WalletID != id {
			next.Recurring = append(next.Recurring, r)
		}
	}

	removedTx := len(e.state.Transactions) - len(next.Transactions)
	removedRules := len(e.state.Recurring) - len(next.Recurring)

	if err := e.commit(ctx, next); err != nil {
		return err
	}

	e.log.Info().
		Str("wallet_id", id).
		Int("transactions_removed", removedTx).
		Int("rules_removed", removedRules).
		Msg("wallet deleted")
	return nil
}
