package domain

// LedgerState is the aggregate root of one user's ledger.
// It is the unit of persistence and of import/export.
type LedgerState struct {
	Wallets      []Wallet        `json:"wallets"`
	Transactions []Transaction   `json:"transactions"`
	Categories   []string        `json:"categories"`
	Recurring    []RecurringRule `json:"recurring"`
}

// NewLedgerState returns an empty ledger with the default categories
func NewLedgerState() *LedgerState {
	return &LedgerState{
		Wallets:      []Wallet{},
		Transactions: []Transaction{},
		Categories:   DefaultCategoryList(),
		Recurring:    []RecurringRule{},
	}
}

// Clone returns a deep copy that shares no slices with s
func (s *LedgerState) Clone() *LedgerState {
	return &LedgerState{
		Wallets:      append([]Wallet{}, s.Wallets...),
		Transactions: append([]Transaction{}, s.Transactions...),
		Categories:   append([]string{}, s.Categories...),
		Recurring:    append([]RecurringRule{}, s.Recurring...),
	}
}

// FindWallet returns the wallet with the given id, or nil
func (s *LedgerState) FindWallet(id string) *Wallet {
	for i := range s.Wallets {
		if s.Wallets[i].ID == id {
			return &s.Wallets[i]
		}
	}
	return nil
}

// FindTransaction returns the index of the transaction with the given id, or -1
func (s *LedgerState) FindTransaction(id string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// FindRecurringRule returns the index of the rule with the given id, or -1
func (s *LedgerState) FindRecurringRule(id string) int {
	for i := range s.Recurring {
		if s.Recurring[i].ID == id {
			return i
		}
	}
	return -1
}

// HasCategory reports whether name is in the category set
func (s *LedgerState) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}
