package scheduler

import (
	"strings"

	"github.com/simaogato/orbital-ledger/internal/domain"
)

// MaxCatchUpIterations bounds how many occurrences one rule may materialize per run.
// A rule that is further behind catches up over several runs.
const MaxCatchUpIterations = 12

// AutoSuffix marks the description of materialized transactions
const AutoSuffix = "(Auto)"

// Options carries the collaborators Materialize needs
type Options struct {
	// UserID owns materialized transactions when the rule carries none
	UserID string
	// NewID generates transaction IDs
	NewID func() string
	// WalletExists filters out rules whose wallet has been removed
	WalletExists func(walletID string) bool
}

// SkippedRule records a rule the run could not process
type SkippedRule struct {
	RuleID string
	Reason string
}

// Result is the outcome of one scheduler pass
type Result struct {
	Transactions []domain.Transaction   // Newly materialized, most recent first
	Rules        []domain.RecurringRule // Full rule list with advanced due dates
	Skipped      []SkippedRule
}

// Materialize catches every active rule up to today
// Logic:
//   - Paused rules are left untouched
//   - Malformed rules and rules pointing at a missing wallet are skipped for this run
//   - While nextDueDate <= today (at most MaxCatchUpIterations times per rule):
//     emit one transaction dated nextDueDate, then advance nextDueDate by one period
//   - A rule that emitted anything gets lastRunDate = today
//
// Materialized transactions are recorded 1:1 (convertedAmount = amount): no rate is fetched here,
// a rule in a foreign currency is corrected by editing the generated transaction.
// Running twice with the same today is a no-op the second time.
func Materialize(rules []domain.RecurringRule, today domain.Date, opts Options) Result {
	result := Result{
		Transactions: []domain.Transaction{},
		Rules:        make([]domain.RecurringRule, len(rules)),
		Skipped:      []SkippedRule{},
	}
	copy(result.Rules, rules)

	for i := range result.Rules {
		rule := &result.Rules[i]
		if !rule.Active {
			continue
		}

		if err := rule.Validate(); err != nil {
			result.Skipped = append(result.Skipped, SkippedRule{RuleID: rule.ID, Reason: err.Error()})
			continue
		}
		if rule.NextDueDate.IsZero() {
			result.Skipped = append(result.Skipped, SkippedRule{RuleID: rule.ID, Reason: "recurring rule has no next due date"})
			continue
		}
		if opts.WalletExists != nil && !opts.WalletExists(rule.WalletID) {
			result.Skipped = append(result.Skipped, SkippedRule{RuleID: rule.ID, Reason: "recurring rule wallet not found"})
			continue
		}

		materialized := 0
		for materialized < MaxCatchUpIterations && !rule.NextDueDate.After(today) {
			next, err := rule.Frequency.Next(rule.NextDueDate)
			if err != nil {
				// Unreachable after Validate, but never loop on a frequency that cannot advance
				break
			}

			tx := occurrence(rule, opts)
			result.Transactions = append([]domain.Transaction{tx}, result.Transactions...)

			rule.NextDueDate = next
			materialized++
		}

		if materialized > 0 {
			rule.LastRunDate = today
		}
	}

	return result
}

// occurrence builds the transaction for the rule's current due date
func occurrence(rule *domain.RecurringRule, opts Options) domain.Transaction {
	userID := rule.UserID
	if userID == "" {
		userID = opts.UserID
	}

	return domain.Transaction{
		ID:              opts.NewID(),
		UserID:          userID,
		WalletID:        rule.WalletID,
		Date:            rule.NextDueDate,
		Amount:          rule.Amount,
		Currency:        rule.Currency,
		ConvertedAmount: rule.Amount,
		Type:            rule.Type,
		Category:        rule.Category,
		Description:     strings.TrimSpace(rule.Description + " " + AutoSuffix),
	}
}
