package domain

// DefaultCategories is the category set of a fresh ledger
var DefaultCategories = []string{
	"Travel", "Food", "Housing", "Tech", "Crypto", "Freelance",
	"Salary", "Transport", "Utilities", "Entertainment", TransferCategory,
}

// DefaultCategoryList returns a fresh copy of DefaultCategories
func DefaultCategoryList() []string {
	out := make([]string, len(DefaultCategories))
	copy(out, DefaultCategories)
	return out
}
