package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() Transaction {
	return Transaction{
		ID:              "t1",
		UserID:          "user-1",
		WalletID:        "w1",
		Date:            NewDate(2024, 5, 1),
		Amount:          decimal.NewFromInt(50),
		Currency:        "USD",
		ConvertedAmount: decimal.NewFromInt(50),
		Type:            TransactionTypeExpense,
		Category:        "Food",
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "Valid expense",
			mutate: func(tx *Transaction) {},
		},
		{
			name:    "Missing wallet",
			mutate:  func(tx *Transaction) { tx.WalletID = "" },
			wantErr: true,
			errMsg:  "transaction wallet ID cannot be empty",
		},
		{
			name:    "Missing date",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: true,
			errMsg:  "transaction date cannot be empty",
		},
		{
			name:    "Zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.Zero },
			wantErr: true,
			errMsg:  "transaction amount must be positive",
		},
		{
			name:    "Negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) },
			wantErr: true,
			errMsg:  "transaction amount must be positive",
		},
		{
			name:    "Missing currency",
			mutate:  func(tx *Transaction) { tx.Currency = "" },
			wantErr: true,
			errMsg:  "transaction currency cannot be empty",
		},
		{
			name:    "Unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "REFUND" },
			wantErr: true,
			errMsg:  "transaction type must be INCOME or EXPENSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)

			err := tx.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	tx := validTransaction()
	tx.ConvertedAmount = decimal.RequireFromString("45.5")

	tx.Type = TransactionTypeIncome
	assert.True(t, decimal.RequireFromString("45.5").Equal(tx.SignedAmount()))

	tx.Type = TransactionTypeExpense
	assert.True(t, decimal.RequireFromString("-45.5").Equal(tx.SignedAmount()))
}
