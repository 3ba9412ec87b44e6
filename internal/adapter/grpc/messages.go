package grpc

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/scheduler"
)

// JSON shapes of LedgerService requests and responses.
// Field names follow the exported ledger document.

type empty struct{}

type idRequest struct {
	ID string `json:"id"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type documentMessage struct {
	Document string `json:"document"`
}

type addWalletRequest struct {
	Name         string            `json:"name"`
	Kind         domain.WalletKind `json:"type"`
	BaseCurrency string            `json:"baseCurrency"`
	Color        string            `json:"color"`
	Icon         string            `json:"icon"`
}

type updateWalletRequest struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type addTransactionRequest struct {
	WalletID    string                 `json:"walletId"`
	Date        domain.Date            `json:"date"`
	Amount      decimal.Decimal        `json:"amount"`
	Currency    string                 `json:"currency"`
	Type        domain.TransactionType `json:"type"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
}

type updateTransactionRequest struct {
	ID              string                  `json:"id"`
	WalletID        *string                 `json:"walletId"`
	Date            *domain.Date            `json:"date"`
	Amount          *decimal.Decimal        `json:"amount"`
	Currency        *string                 `json:"currency"`
	Type            *domain.TransactionType `json:"type"`
	Category        *string                 `json:"category"`
	Description     *string                 `json:"description"`
	ConvertedAmount *decimal.Decimal        `json:"convertedAmount"`
}

type transferRequest struct {
	SourceWalletID string          `json:"sourceWalletId"`
	TargetWalletID string          `json:"targetWalletId"`
	Amount         decimal.Decimal `json:"amount"`
}

type transferResponse struct {
	Outflow domain.Transaction `json:"outflow"`
	Inflow  domain.Transaction `json:"inflow"`
}

type addRecurringRuleRequest struct {
	WalletID    string                 `json:"walletId"`
	Amount      decimal.Decimal        `json:"amount"`
	Currency    string                 `json:"currency"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Type        domain.TransactionType `json:"type"`
	Frequency   domain.Frequency       `json:"frequency"`
	StartDate   domain.Date            `json:"startDate"`
}

type skippedRule struct {
	RuleID string `json:"ruleId"`
	Reason string `json:"reason"`
}

type schedulerResponse struct {
	Materialized []domain.Transaction `json:"materialized"`
	Skipped      []skippedRule        `json:"skipped"`
}

func newSchedulerResponse(materialized []domain.Transaction, skipped []scheduler.SkippedRule) schedulerResponse {
	resp := schedulerResponse{
		Materialized: materialized,
		Skipped:      make([]skippedRule, 0, len(skipped)),
	}
	if resp.Materialized == nil {
		resp.Materialized = []domain.Transaction{}
	}
	for _, s := range skipped {
		resp.Skipped = append(resp.Skipped, skippedRule{RuleID: s.RuleID, Reason: s.Reason})
	}
	return resp
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type currencyRequest struct {
	Currency string `json:"currency"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

type walletValue struct {
	WalletID string          `json:"walletId"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Value    decimal.Decimal `json:"value"`
	Priced   bool            `json:"priced"`
}

type netWorthResponse struct {
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	TodayChange   decimal.Decimal `json:"todayChange"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Wallets       []walletValue   `json:"wallets"`
	Unpriced      []string        `json:"unpriced"`
}

type monthlyStatsResponse struct {
	Currency string          `json:"currency"`
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Net      decimal.Decimal `json:"net"`
	Unpriced []string        `json:"unpriced"`
}

type categoryMatrixResponse struct {
	Currency   string                         `json:"currency"`
	Year       int                            `json:"year"`
	Categories map[string][12]decimal.Decimal `json:"categories"`
	Unpriced   []string                       `json:"unpriced"`
}

type ratesRequest struct {
	Base string `json:"base"`
}

type ratesResponse struct {
	Base        string                     `json:"base"`
	Rates       map[string]decimal.Decimal `json:"rates"`
	Source      domain.RateSource          `json:"source"`
	LastUpdated *time.Time                 `json:"lastUpdated,omitempty"`
	Error       string                     `json:"error,omitempty"`
}
