package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency represents how often a recurring rule fires
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Next returns the date exactly one period after d.
// Months and years use calendar arithmetic: Jan 31 + 1 month rolls over into March,
// the same normalisation time.AddDate applies.
func (f Frequency) Next(d Date) (Date, error) {
	switch f {
	case FrequencyDaily:
		return d.AddDays(1), nil
	case FrequencyWeekly:
		return d.AddDays(7), nil
	case FrequencyMonthly:
		return d.AddMonths(1), nil
	case FrequencyYearly:
		return d.AddYears(1), nil
	default:
		return Date{}, fmt.Errorf("unknown frequency %q", string(f))
	}
}

// RecurringRule describes a transaction template the scheduler materializes on a schedule
type RecurringRule struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	WalletID    string          `json:"walletId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   Date            `json:"startDate"`
	NextDueDate Date            `json:"nextDueDate"` // Next occurrence not yet materialized
	Active      bool            `json:"active"`      // Paused rules are frozen
	LastRunDate Date            `json:"lastRunDate,omitzero"`
}

// Validate ensures the rule adheres to domain rules
// Returns an error if validation fails
func (r *RecurringRule) Validate() error {
	if r.WalletID == "" {
		return errors.New("recurring rule wallet ID cannot be empty")
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("recurring rule amount must be positive")
	}

	if r.Currency == "" {
		return errors.New("recurring rule currency cannot be empty")
	}

	if !r.Type.IsValid() {
		return errors.New("recurring rule type must be INCOME or EXPENSE")
	}

	if _, err := r.Frequency.Next(r.StartDate); err != nil {
		return errors.New("recurring rule frequency must be DAILY, WEEKLY, MONTHLY or YEARLY")
	}

	if r.StartDate.IsZero() {
		return errors.New("recurring rule start date cannot be empty")
	}

	return nil
}
