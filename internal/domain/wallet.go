package domain

import (
	"errors"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// WalletKind represents the kind of wallet in the system
type WalletKind string

const (
	WalletKindFiat   WalletKind = "FIAT"
	WalletKindCrypto WalletKind = "CRYPTO"
)

// Wallet represents a named pot of value denominated in a single base currency
type Wallet struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Kind         WalletKind      `json:"type"`
	BaseCurrency string          `json:"baseCurrency"`
	Balance      decimal.Decimal `json:"balance"` // Derived: written only by the reconciler
	Color        string          `json:"color,omitempty"`
	Icon         string          `json:"icon,omitempty"`
}

// Validate ensures the wallet adheres to domain rules
// Returns an error if validation fails
func (w *Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return errors.New("wallet name cannot be empty")
	}

	if w.Kind != WalletKindFiat && w.Kind != WalletKindCrypto {
		return errors.New("wallet type must be FIAT or CRYPTO")
	}

	if w.BaseCurrency == "" {
		return errors.New("wallet base currency cannot be empty")
	}

	// FIAT wallets must use an ISO 4217 code; crypto tickers are free-form
	if w.Kind == WalletKindFiat && !IsFiatCurrency(w.BaseCurrency) {
		return errors.New("wallet base currency " + w.BaseCurrency + " is not a known fiat currency")
	}

	return nil
}

// IsFiatCurrency reports whether code is an ISO 4217 currency known to go-money
func IsFiatCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// NormalizeCurrency upper-cases and trims a currency code
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
