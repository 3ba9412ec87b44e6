package domain

import "errors"

// Error kinds surfaced by the ledger engine.
// Callers match them with errors.Is; the wrapped message carries the offending id.
var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrRecurringRuleNotFound = errors.New("recurring rule not found")
	ErrConversionUnavailable = errors.New("conversion rate unavailable")
	ErrMalformedImport       = errors.New("malformed import")
	ErrStateNotFound         = errors.New("ledger state not found")
	ErrInvalidInput          = errors.New("invalid input")
)
