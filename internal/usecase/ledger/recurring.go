package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/scheduler"
)

// AddRecurringRuleInput holds the fields of a new recurring rule
type AddRecurringRuleInput struct {
	WalletID    string
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	Type        domain.TransactionType
	Frequency   domain.Frequency
	StartDate   domain.Date
}

// SchedulerReport summarises one scheduler run
type SchedulerReport struct {
	Materialized []domain.Transaction // Most recent first
	Skipped      []scheduler.SkippedRule
}

// RecurringRules returns a copy of the recurring rules
func (e *Engine) RecurringRules() []domain.RecurringRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.RecurringRule{}, e.state.Recurring...)
}

// AddRecurringRule registers an active rule whose first occurrence is StartDate.
// Occurrences are materialized by the next RunScheduler.
func (e *Engine) AddRecurringRule(ctx context.Context, input AddRecurringRuleInput) (*domain.RecurringRule, error) {
	rule := domain.RecurringRule{
		UserID:      e.UserID,
		WalletID:    input.WalletID,
		Amount:      input.Amount,
		Currency:    domain.NormalizeCurrency(input.Currency),
		Category:    strings.TrimSpace(input.Category),
		Description: input.Description,
		Type:        input.Type,
		Frequency:   domain.Frequency(strings.ToUpper(string(input.Frequency))),
		StartDate:   input.StartDate,
		NextDueDate: input.StartDate,
		Active:      true,
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.FindWallet(rule.WalletID) == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, rule.WalletID)
	}

	rule.ID = e.newID()
	next := e.state.Clone()
	next.Recurring = append(next.Recurring, rule)
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("rule_id", rule.ID).
		Str("frequency", string(rule.Frequency)).
		Str("next_due", rule.NextDueDate.String()).
		Msg("recurring rule added")
	return &rule, nil
}

// ToggleRecurringRule pauses an active rule or resumes a paused one.
// Resuming does not move nextDueDate: missed occurrences are caught up by the scheduler.
func (e *Engine) ToggleRecurringRule(ctx context.Context, id string) (*domain.RecurringRule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.FindRecurringRule(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecurringRuleNotFound, id)
	}

	next := e.state.Clone()
	next.Recurring[idx].Active = !next.Recurring[idx].Active
	rule := next.Recurring[idx]

	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteRecurringRule removes a rule. Already materialized transactions stay.
func (e *Engine) DeleteRecurringRule(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.state.FindRecurringRule(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecurringRuleNotFound, id)
	}

	next := e.state.Clone()
	next.Recurring = append(next.Recurring[:idx], next.Recurring[idx+1:]...)
	return e.commit(ctx, next)
}

// RunScheduler materializes every due occurrence of the active rules up to today
// Logic:
//  1. Hand the rules to the scheduler with today's date
//  2. Nothing materialized: no write at all
//  3. Otherwise prepend the new transactions, store the advanced rules and reconcile
func (e *Engine) RunScheduler(ctx context.Context) (*SchedulerReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.today()
	result := scheduler.Materialize(e.state.Recurring, today, scheduler.Options{
		UserID: e.UserID,
		NewID:  e.newID,
		WalletExists: func(walletID string) bool {
			return e.state.FindWallet(walletID) != nil
		},
	})

	for _, s := range result.Skipped {
		e.log.Warn().Str("rule_id", s.RuleID).Str("reason", s.Reason).Msg("recurring rule skipped")
	}

	report := &SchedulerReport{
		Materialized: result.Transactions,
		Skipped:      result.Skipped,
	}
	if len(result.Transactions) == 0 {
		return report, nil
	}

	next := e.state.Clone()
	next.Transactions = append(result.Transactions, next.Transactions...)
	next.Recurring = result.Rules
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("today", today.String()).
		Int("materialized", len(result.Transactions)).
		Msg("recurring rules processed")
	return report, nil
}
