package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tells where a rate table came from
type RateSource string

const (
	RateSourcePrimary  RateSource = "primary"
	RateSourceFallback RateSource = "fallback"
	RateSourceCache    RateSource = "cache"
	RateSourceError    RateSource = "error"
)

// RateTable maps upper-case currency codes to the value of one unit of Base
type RateTable struct {
	Base        string
	Rates       map[string]decimal.Decimal
	Source      RateSource
	LastUpdated time.Time
	Error       string
}

// Usable reports whether the table can be used for conversion
func (t *RateTable) Usable() bool {
	return t != nil && t.Source != RateSourceError && len(t.Rates) > 0
}

// RateProvider defines the interface for fetching conversion rates
type RateProvider interface {
	// GetRates returns the conversion rates from base to every known currency.
	// A table with Source == RateSourceError carries no usable rates.
	GetRates(ctx context.Context, base string) (*RateTable, error)
}

// StateRepository defines the interface for ledger persistence operations
type StateRepository interface {
	// Load retrieves the serialized ledger of a user.
	// Returns ErrStateNotFound if the user has no stored ledger.
	Load(ctx context.Context, userID string) ([]byte, error)

	// Save replaces the serialized ledger of a user
	Save(ctx context.Context, userID string, blob []byte) error
}
