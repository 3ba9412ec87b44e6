package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// Converter converts an amount between two currencies.
// ok == false means no rate was available.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool)
}

// WalletValue is one wallet's balance expressed in the reporting currency
type WalletValue struct {
	WalletID string
	Name     string
	Currency string
	Balance  decimal.Decimal // In the wallet's base currency
	Value    decimal.Decimal // In the reporting currency, zero when unpriced
	Priced   bool
}

// NetWorthResult represents the calculated net worth
type NetWorthResult struct {
	Currency      string
	Total         decimal.Decimal
	TodayChange   decimal.Decimal // Net flow of transactions dated today
	ChangePercent decimal.Decimal // TodayChange relative to the start-of-day total
	Wallets       []WalletValue
	Unpriced      []string // Currencies with no rate, left out of Total
}

// MonthlyStats holds income and expense of one calendar month
type MonthlyStats struct {
	Currency string
	Year     int
	Month    time.Month
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Net      decimal.Decimal
	Unpriced []string
}

// CategoryMatrix holds expenses per category and month of one year.
// Categories with no spend in the year are omitted.
type CategoryMatrix struct {
	Currency   string
	Year       int
	Categories map[string][12]decimal.Decimal
	Unpriced   []string
}

// DashboardService computes read-only aggregates over a ledger snapshot
type DashboardService struct {
	Converter Converter
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(converter Converter) *DashboardService {
	return &DashboardService{
		Converter: converter,
	}
}

// GetNetWorth calculates the total net worth in currency
// Logic:
//   - Each wallet balance is converted with the rate of its base currency
//   - Wallets whose currency has no rate count as zero and are reported as unpriced
//   - TodayChange: INCOME minus EXPENSE of today's transactions, valued from amount/currency
//   - ChangePercent: TodayChange / (Total - TodayChange) * 100, zero when the base is zero
func (s *DashboardService) GetNetWorth(ctx context.Context, state *domain.LedgerState, currency string, today domain.Date) (*NetWorthResult, error) {
	currency = domain.NormalizeCurrency(currency)
	rates := newRateCache(s.Converter, currency)

	// 1. Wallet values
	result := &NetWorthResult{
		Currency: currency,
		Total:    decimal.Zero,
		Wallets:  make([]WalletValue, 0, len(state.Wallets)),
	}
	for _, w := range state.Wallets {
		wv := WalletValue{
			WalletID: w.ID,
			Name:     w.Name,
			Currency: w.BaseCurrency,
			Balance:  w.Balance,
			Value:    decimal.Zero,
		}
		if factor, ok := rates.factor(ctx, w.BaseCurrency); ok {
			wv.Value = w.Balance.Mul(factor)
			wv.Priced = true
			result.Total = result.Total.Add(wv.Value)
		}
		result.Wallets = append(result.Wallets, wv)
	}

	// 2. Today's net flow
	change := decimal.Zero
	for _, tx := range state.Transactions {
		if tx.Date != today {
			continue
		}
		if factor, ok := rates.factor(ctx, tx.Currency); ok {
			change = change.Add(tx.Amount.Mul(factor).Mul(tx.Type.Sign()))
		}
	}
	result.TodayChange = change

	// 3. Relative change
	result.ChangePercent = decimal.Zero
	if previous := result.Total.Sub(change); !previous.IsZero() {
		result.ChangePercent = change.Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	}

	result.Unpriced = rates.unpriced()
	return result, nil
}

// GetMonthlyStats sums income and expense dated in the given month, valued in currency
func (s *DashboardService) GetMonthlyStats(ctx context.Context, state *domain.LedgerState, currency string, year int, month time.Month) (*MonthlyStats, error) {
	currency = domain.NormalizeCurrency(currency)
	rates := newRateCache(s.Converter, currency)

	stats := &MonthlyStats{
		Currency: currency,
		Year:     year,
		Month:    month,
		Income:   decimal.Zero,
		Expense:  decimal.Zero,
	}
	for _, tx := range state.Transactions {
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		factor, ok := rates.factor(ctx, tx.Currency)
		if !ok {
			continue
		}
		value := tx.Amount.Mul(factor)
		if tx.Type == domain.TransactionTypeIncome {
			stats.Income = stats.Income.Add(value)
		} else {
			stats.Expense = stats.Expense.Add(value)
		}
	}
	stats.Net = stats.Income.Sub(stats.Expense)
	stats.Unpriced = rates.unpriced()
	return stats, nil
}

// GetCategoryMatrix sums expenses per category and month for year, valued in currency.
// Only categories present in the ledger's category set are reported.
func (s *DashboardService) GetCategoryMatrix(ctx context.Context, state *domain.LedgerState, currency string, year int) (*CategoryMatrix, error) {
	currency = domain.NormalizeCurrency(currency)
	rates := newRateCache(s.Converter, currency)

	totals := make(map[string][12]decimal.Decimal)
	for _, tx := range state.Transactions {
		if tx.Type != domain.TransactionTypeExpense || tx.Date.Year() != year || !state.HasCategory(tx.Category) {
			continue
		}
		factor, ok := rates.factor(ctx, tx.Currency)
		if !ok {
			continue
		}
		row, seen := totals[tx.Category]
		if !seen {
			for i := range row {
				row[i] = decimal.Zero
			}
		}
		m := tx.Date.Month() - 1
		row[m] = row[m].Add(tx.Amount.Mul(factor))
		totals[tx.Category] = row
	}

	matrix := &CategoryMatrix{
		Currency:   currency,
		Year:       year,
		Categories: make(map[string][12]decimal.Decimal),
		Unpriced:   rates.unpriced(),
	}
	for cat, row := range totals {
		for _, v := range row {
			if v.IsPositive() {
				matrix.Categories[cat] = row
				break
			}
		}
	}
	return matrix, nil
}

// rateCache memoizes the conversion factor of each source currency for one computation
type rateCache struct {
	converter Converter
	target    string
	factors   map[string]decimal.Decimal
	missing   map[string]bool
}

func newRateCache(converter Converter, target string) *rateCache {
	return &rateCache{
		converter: converter,
		target:    target,
		factors:   make(map[string]decimal.Decimal),
		missing:   make(map[string]bool),
	}
}

// factor returns the value of one unit of from in the target currency
func (c *rateCache) factor(ctx context.Context, from string) (decimal.Decimal, bool) {
	from = domain.NormalizeCurrency(from)
	if from == c.target {
		return decimal.NewFromInt(1), true
	}
	if f, ok := c.factors[from]; ok {
		return f, true
	}
	if c.missing[from] {
		return decimal.Zero, false
	}

	f, ok := c.converter.Convert(ctx, decimal.NewFromInt(1), from, c.target)
	if !ok {
		c.missing[from] = true
		return decimal.Zero, false
	}
	c.factors[from] = f
	return f, true
}

func (c *rateCache) unpriced() []string {
	out := make([]string, 0, len(c.missing))
	for code := range c.missing {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
