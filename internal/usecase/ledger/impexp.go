package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/reconciler"
)

// importDocument mirrors LedgerState with pointer slices so a missing key can be told from an empty one
type importDocument struct {
	Wallets      *[]domain.Wallet        `json:"wallets"`
	Transactions *[]domain.Transaction   `json:"transactions"`
	Categories   *[]string               `json:"categories"`
	Recurring    *[]domain.RecurringRule `json:"recurring"`
}

// EncodeState serializes a ledger as 2-space indented JSON.
// The same document is used for persistence and for export.
func EncodeState(state *domain.LedgerState) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

// DecodeState parses an exported ledger
// Logic:
//  1. wallets and transactions are required (empty arrays are fine)
//  2. Missing categories fall back to the defaults, missing recurring to none
//     Repeated categories are kept once
//  3. Stored balances are ignored and recomputed from the transactions
func DecodeState(data []byte) (*domain.LedgerState, error) {
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedImport, err)
	}

	if doc.Wallets == nil || doc.Transactions == nil {
		return nil, fmt.Errorf("%w: wallets and transactions are required", domain.ErrMalformedImport)
	}

	state := &domain.LedgerState{
		Wallets:      *doc.Wallets,
		Transactions: *doc.Transactions,
		Categories:   domain.DefaultCategoryList(),
		Recurring:    []domain.RecurringRule{},
	}
	if doc.Categories != nil {
		state.Categories = uniqueCategories(*doc.Categories)
	}
	if doc.Recurring != nil {
		state.Recurring = *doc.Recurring
	}

	state.Wallets = reconciler.Reconcile(state.Transactions, state.Wallets)
	return state, nil
}

// uniqueCategories trims names and drops blanks and repeats, first occurrence wins
func uniqueCategories(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Export returns the whole ledger as a JSON document
func (e *Engine) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := EncodeState(e.state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}
	return data, nil
}

// Import replaces the whole ledger with an exported document.
// A malformed document leaves the ledger untouched.
func (e *Engine) Import(ctx context.Context, data []byte) error {
	state, err := DecodeState(data)
	if err != nil {
		e.log.Warn().Err(err).Msg("import rejected")
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.commit(ctx, state); err != nil {
		return err
	}

	e.log.Info().
		Int("wallets", len(state.Wallets)).
		Int("transactions", len(state.Transactions)).
		Msg("ledger imported")
	return nil
}
