package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// AddTransactionInput holds the user-entered fields of a transaction
type AddTransactionInput struct {
	WalletID    string
	Date        domain.Date
	Amount      decimal.Decimal // Absolute value
	Currency    string
	Type        domain.TransactionType
	Category    string
	Description string
}

// UpdateTransactionInput holds a partial transaction update. Nil means unchanged.
type UpdateTransactionInput struct {
	WalletID    *string
	Date        *domain.Date
	Amount      *decimal.Decimal
	Currency    *string
	Type        *domain.TransactionType
	Category    *string
	Description *string

	// ConvertedAmount overrides the stored conversion.
	// A change of amount, currency or wallet recomputes it and takes precedence.
	ConvertedAmount *decimal.Decimal
}

// AddTransaction records a transaction against an existing wallet
// Logic:
//  1. Validate the input and resolve the wallet
//  2. Convert amount into the wallet's base currency (1:1 with a warning if no rate)
//  3. Re-check the wallet still exists, prepend and reconcile
func (e *Engine) AddTransaction(ctx context.Context, input AddTransactionInput) (*domain.Transaction, error) {
	tx := domain.Transaction{
		UserID:      e.UserID,
		WalletID:    input.WalletID,
		Date:        input.Date,
		Amount:      input.Amount,
		Currency:    domain.NormalizeCurrency(input.Currency),
		Type:        input.Type,
		Category:    strings.TrimSpace(input.Category),
		Description: input.Description,
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// 1. Resolve wallet
	wallet, err := e.findWallet(tx.WalletID)
	if err != nil {
		return nil, err
	}

	// 2. Convert outside the lock
	converted, ok := e.Converter.Convert(ctx, tx.Amount, tx.Currency, wallet.BaseCurrency)
	if !ok {
		e.log.Warn().
			Str("wallet_id", wallet.ID).
			Str("from", tx.Currency).
			Str("to", wallet.BaseCurrency).
			Msg("no conversion rate, recording transaction 1:1")
		converted = tx.Amount
	}
	tx.ConvertedAmount = converted

	// 3. Commit
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.FindWallet(tx.WalletID) == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, tx.WalletID)
	}

	tx.ID = e.newID()
	next := e.state.Clone()
	next.Transactions = append([]domain.Transaction{tx}, next.Transactions...)
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("transaction_id", tx.ID).
		Str("wallet_id", tx.WalletID).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Str("currency", tx.Currency).
		Msg("transaction added")
	return &tx, nil
}

// maxUpdateAttempts bounds how often UpdateTransaction restarts when the transaction's
// amount, currency or wallet is changed by another writer during its rate lookup
const maxUpdateAttempts = 3

// UpdateTransaction applies a partial update to a transaction
// Logic:
//  1. Merge the update into the stored transaction and validate
//  2. If amount, currency or wallet changed: reconvert into the (new) wallet's base currency.
//     Same currency means convertedAmount = amount. A missing rate keeps the previous convertedAmount.
//  3. Re-read the transaction, apply the update to its current version and commit.
//     Edits committed during the rate lookup are kept; if one of them changed the
//     conversion basis the update starts over.
func (e *Engine) UpdateTransaction(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	for attempt := 1; ; attempt++ {
		tx, retry, err := e.updateTransactionOnce(ctx, id, input)
		if !retry {
			return tx, err
		}
		if attempt == maxUpdateAttempts {
			return nil, fmt.Errorf("failed to update transaction %s: it kept changing during conversion", id)
		}
		e.log.Debug().Str("transaction_id", id).Int("attempt", attempt).Msg("transaction changed during conversion, retrying update")
	}
}

// updateTransactionOnce runs one update attempt. retry is true when a concurrent edit
// invalidated the conversion and nothing was written.
func (e *Engine) updateTransactionOnce(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, bool, error) {
	e.mu.Lock()
	idx := e.state.FindTransaction(id)
	if idx < 0 {
		e.mu.Unlock()
		return nil, false, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}
	old := e.state.Transactions[idx]
	e.mu.Unlock()

	// 1. Merge
	updated := applyTransactionUpdate(old, input)
	if err := updated.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	wallet, err := e.findWallet(updated.WalletID)
	if err != nil {
		return nil, false, err
	}

	// 2. Reconvert when the value basis changed
	var converted decimal.Decimal
	reconverted := false
	if !sameConversionBasis(updated, old) {
		if updated.Currency == wallet.BaseCurrency {
			converted, reconverted = updated.Amount, true
		} else if c, ok := e.Converter.Convert(ctx, updated.Amount, updated.Currency, wallet.BaseCurrency); ok {
			converted, reconverted = c, true
		} else {
			e.log.Warn().
				Str("transaction_id", id).
				Str("from", updated.Currency).
				Str("to", wallet.BaseCurrency).
				Msg("no conversion rate, keeping previous converted amount")
		}
	}

	// 3. Commit against the current version
	e.mu.Lock()
	defer e.mu.Unlock()

	idx = e.state.FindTransaction(id)
	if idx < 0 {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}
	current := e.state.Transactions[idx]
	merged := applyTransactionUpdate(current, input)

	if e.state.FindWallet(merged.WalletID) == nil {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, merged.WalletID)
	}
	if !sameConversionBasis(merged, current) {
		if !sameConversionBasis(merged, updated) {
			return nil, true, nil
		}
		if reconverted {
			merged.ConvertedAmount = converted
		}
	}
	if err := merged.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	next := e.state.Clone()
	next.Transactions[idx] = merged
	if err := e.commit(ctx, next); err != nil {
		return nil, false, err
	}
	return &merged, false, nil
}

// applyTransactionUpdate returns tx with the non-nil fields of input applied
func applyTransactionUpdate(tx domain.Transaction, input UpdateTransactionInput) domain.Transaction {
	if input.WalletID != nil {
		tx.WalletID = *input.WalletID
	}
	if input.Date != nil {
		tx.Date = *input.Date
	}
	if input.Amount != nil {
		tx.Amount = *input.Amount
	}
	if input.Currency != nil {
		tx.Currency = domain.NormalizeCurrency(*input.Currency)
	}
	if input.Type != nil {
		tx.Type = *input.Type
	}
	if input.Category != nil {
		tx.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		tx.Description = *input.Description
	}
	if input.ConvertedAmount != nil {
		tx.ConvertedAmount = *input.ConvertedAmount
	}
	return tx
}

// sameConversionBasis reports whether a and b convert identically
func sameConversionBasis(a, b domain.Transaction) bool {
	return a.Amount.Equal(b.Amount) && a.Currency == b.Currency && a.WalletID == b.WalletID
}

// DeleteTransaction removes a transaction. Deleting an unknown id is a no-op.
func (e *Engine) DeleteTransaction(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.FindTransaction(id)
	if idx < 0 {
		return nil
	}

	next := e.state.Clone()
	next.Transactions = append(next.Transactions[:idx], next.Transactions[idx+1:]...)
	return e.commit(ctx, next)
}
