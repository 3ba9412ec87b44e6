package reconciler

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// Reconcile recomputes every wallet balance from the full transaction log
// Returns a new wallet slice; the inputs are not modified
// Logic:
//  1. Copy the wallets and reset every balance to zero
//  2. Index the copies by wallet ID
//  3. Fold over the transactions: INCOME adds convertedAmount, EXPENSE subtracts it
//  4. Transactions whose wallet no longer exists are skipped
//
// Safety: Balances are never patched incrementally, so the result depends only on
// the set of transactions, not on their order or on any previous balance.
func Reconcile(transactions []domain.Transaction, wallets []domain.Wallet) []domain.Wallet {
	// 1. Copy wallets with a zero balance
	result := make([]domain.Wallet, len(wallets))
	copy(result, wallets)

	// 2. Index by wallet ID
	index := make(map[string]int, len(result))
	for i := range result {
		result[i].Balance = decimal.Zero
		index[result[i].ID] = i
	}

	// 3. Fold over transactions
	for i := range transactions {
		tx := &transactions[i]
		walletIdx, ok := index[tx.WalletID]
		if !ok {
			// 4. Orphaned transaction, pruned elsewhere
			continue
		}
		result[walletIdx].Balance = result[walletIdx].Balance.Add(tx.SignedAmount())
	}

	return result
}
