package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Sign returns +1 for INCOME and -1 for EXPENSE
func (t TransactionType) Sign() decimal.Decimal {
	if t == TransactionTypeIncome {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// IsValid reports whether t is INCOME or EXPENSE
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransferCategory is the reserved category tag of transfer legs
const TransferCategory = "Transfer"

// Transaction represents a single income or expense entry against one wallet
type Transaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	WalletID        string          `json:"walletId"`
	Date            Date            `json:"date"`
	Amount          decimal.Decimal `json:"amount"`          // ABSOLUTE VALUE in Currency
	Currency        string          `json:"currency"`        // Currency the amount was recorded in
	ConvertedAmount decimal.Decimal `json:"convertedAmount"` // Amount in the wallet's base currency at write time
	Type            TransactionType `json:"type"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
}

// SignedAmount returns the convertedAmount with the sign of the transaction type
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.ConvertedAmount.Mul(t.Type.Sign())
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.WalletID == "" {
		return errors.New("transaction wallet ID cannot be empty")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date cannot be empty")
	}

	// Amounts are stored as magnitudes, the type carries the direction
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}

	if t.Currency == "" {
		return errors.New("transaction currency cannot be empty")
	}

	if !t.Type.IsValid() {
		return errors.New("transaction type must be INCOME or EXPENSE")
	}

	return nil
}
