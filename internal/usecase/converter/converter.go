package converter

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// CurrencyConverter converts amounts between currencies using a RateProvider.
// It keeps no cache of its own: every conversion asks the provider once.
type CurrencyConverter struct {
	Provider domain.RateProvider
	log      zerolog.Logger
}

// NewCurrencyConverter creates a new CurrencyConverter instance
func NewCurrencyConverter(provider domain.RateProvider, log zerolog.Logger) *CurrencyConverter {
	return &CurrencyConverter{
		Provider: provider,
		log:      log,
	}
}

// Convert expresses amount (in from) in the to currency
// Logic:
//  1. Same currency: return the amount untouched without calling the provider
//  2. Fetch the rate table based on from
//  3. Look up to in the table and multiply
//
// On provider failure, an unusable table or a missing target code it returns (amount, false);
// the caller decides whether that blocks the operation.
func (c *CurrencyConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)

	// 1. Same currency
	if from == to {
		return amount, true
	}

	// 2. Fetch rates
	table, err := c.Provider.GetRates(ctx, from)
	if err != nil {
		c.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("rate provider failed")
		return amount, false
	}
	if !table.Usable() {
		c.log.Warn().Str("from", from).Str("to", to).Msg("rate provider returned no usable rates")
		return amount, false
	}

	// 3. Look up the target currency
	rate, ok := table.Rates[to]
	if !ok {
		c.log.Warn().Str("from", from).Str("to", to).Str("source", string(table.Source)).Msg("target currency missing from rate table")
		return amount, false
	}

	return amount.Mul(rate), true
}
