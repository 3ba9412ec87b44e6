package scheduler

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func rule(id string, freq domain.Frequency, next domain.Date) domain.RecurringRule {
	return domain.RecurringRule{
		ID:          id,
		UserID:      "user-1",
		WalletID:    "w1",
		Amount:      decimal.NewFromInt(15),
		Currency:    "USD",
		Category:    "Entertainment",
		Description: "Streaming",
		Type:        domain.TransactionTypeExpense,
		Frequency:   freq,
		StartDate:   next,
		NextDueDate: next,
		Active:      true,
	}
}

func TestMaterialize_DailyCatchUpIsCapped(t *testing.T) {
	today := domain.NewDate(2024, 6, 30)
	rules := []domain.RecurringRule{rule("r1", domain.FrequencyDaily, today.AddDays(-30))}

	result := Materialize(rules, today, Options{NewID: sequentialIDs()})

	assert.Len(t, result.Transactions, MaxCatchUpIterations)
	assert.Equal(t, today.AddDays(-30+MaxCatchUpIterations), result.Rules[0].NextDueDate)
	assert.Equal(t, today, result.Rules[0].LastRunDate)

	// Most recent first
	assert.Equal(t, today.AddDays(-30+MaxCatchUpIterations-1), result.Transactions[0].Date)
	assert.Equal(t, today.AddDays(-30), result.Transactions[len(result.Transactions)-1].Date)

	// Input untouched
	assert.Equal(t, today.AddDays(-30), rules[0].NextDueDate)
}

func TestMaterialize_SecondRunIsNoOp(t *testing.T) {
	today := domain.NewDate(2024, 3, 10)
	rules := []domain.RecurringRule{
		rule("r1", domain.FrequencyWeekly, domain.NewDate(2024, 2, 20)),
		rule("r2", domain.FrequencyMonthly, domain.NewDate(2024, 3, 10)),
	}

	first := Materialize(rules, today, Options{NewID: sequentialIDs()})
	require.NotEmpty(t, first.Transactions)

	second := Materialize(first.Rules, today, Options{NewID: sequentialIDs()})

	assert.Empty(t, second.Transactions)
	assert.Equal(t, first.Rules, second.Rules)
}

func TestMaterialize_Occurrences(t *testing.T) {
	tests := []struct {
		name      string
		freq      domain.Frequency
		next      domain.Date
		today     domain.Date
		wantDates []domain.Date
		wantNext  domain.Date
	}{
		{
			name:      "Due today materializes once",
			freq:      domain.FrequencyDaily,
			next:      domain.NewDate(2024, 5, 1),
			today:     domain.NewDate(2024, 5, 1),
			wantDates: []domain.Date{domain.NewDate(2024, 5, 1)},
			wantNext:  domain.NewDate(2024, 5, 2),
		},
		{
			name:      "Future rule does nothing",
			freq:      domain.FrequencyMonthly,
			next:      domain.NewDate(2024, 5, 2),
			today:     domain.NewDate(2024, 5, 1),
			wantDates: nil,
			wantNext:  domain.NewDate(2024, 5, 2),
		},
		{
			name:  "Weekly steps seven days",
			freq:  domain.FrequencyWeekly,
			next:  domain.NewDate(2024, 4, 17),
			today: domain.NewDate(2024, 5, 1),
			wantDates: []domain.Date{
				domain.NewDate(2024, 5, 1),
				domain.NewDate(2024, 4, 24),
				domain.NewDate(2024, 4, 17),
			},
			wantNext: domain.NewDate(2024, 5, 8),
		},
		{
			name:  "Monthly crosses the year boundary",
			freq:  domain.FrequencyMonthly,
			next:  domain.NewDate(2023, 11, 15),
			today: domain.NewDate(2024, 1, 20),
			wantDates: []domain.Date{
				domain.NewDate(2024, 1, 15),
				domain.NewDate(2023, 12, 15),
				domain.NewDate(2023, 11, 15),
			},
			wantNext: domain.NewDate(2024, 2, 15),
		},
		{
			name:  "Yearly on leap day rolls over",
			freq:  domain.FrequencyYearly,
			next:  domain.NewDate(2024, 2, 29),
			today: domain.NewDate(2024, 3, 1),
			wantDates: []domain.Date{
				domain.NewDate(2024, 2, 29),
			},
			wantNext: domain.NewDate(2025, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []domain.RecurringRule{rule("r1", tt.freq, tt.next)}

			result := Materialize(rules, tt.today, Options{NewID: sequentialIDs()})

			dates := make([]domain.Date, 0, len(result.Transactions))
			for _, tx := range result.Transactions {
				dates = append(dates, tx.Date)
			}
			if tt.wantDates == nil {
				assert.Empty(t, dates)
				assert.True(t, result.Rules[0].LastRunDate.IsZero())
			} else {
				assert.Equal(t, tt.wantDates, dates)
				assert.Equal(t, tt.today, result.Rules[0].LastRunDate)
			}
			assert.Equal(t, tt.wantNext, result.Rules[0].NextDueDate)
		})
	}
}

func TestMaterialize_TransactionShape(t *testing.T) {
	today := domain.NewDate(2024, 5, 1)
	r := rule("r1", domain.FrequencyMonthly, today)
	r.Currency = "EUR" // wallet may be USD: still recorded 1:1
	r.UserID = ""

	result := Materialize([]domain.RecurringRule{r}, today, Options{UserID: "owner", NewID: sequentialIDs()})

	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, "owner", tx.UserID)
	assert.Equal(t, "w1", tx.WalletID)
	assert.Equal(t, "EUR", tx.Currency)
	assert.True(t, tx.Amount.Equal(tx.ConvertedAmount))
	assert.Equal(t, domain.TransactionTypeExpense, tx.Type)
	assert.Equal(t, "Entertainment", tx.Category)
	assert.Equal(t, "Streaming (Auto)", tx.Description)
}

func TestMaterialize_SkipsPausedMalformedAndOrphanedRules(t *testing.T) {
	today := domain.NewDate(2024, 5, 1)
	past := today.AddDays(-3)

	paused := rule("paused", domain.FrequencyDaily, past)
	paused.Active = false

	malformed := rule("malformed", domain.Frequency("HOURLY"), past)

	orphan := rule("orphan", domain.FrequencyDaily, past)
	orphan.WalletID = "gone"

	healthy := rule("healthy", domain.FrequencyDaily, past)

	rules := []domain.RecurringRule{paused, malformed, orphan, healthy}

	result := Materialize(rules, today, Options{
		NewID:        sequentialIDs(),
		WalletExists: func(id string) bool { return id == "w1" },
	})

	// Healthy rule still runs: 3 days ago, 2 days ago, yesterday, today
	assert.Len(t, result.Transactions, 4)
	assert.Equal(t, past, result.Rules[0].NextDueDate, "paused rule must stay frozen")
	assert.Equal(t, past, result.Rules[1].NextDueDate)
	assert.Equal(t, past, result.Rules[2].NextDueDate)
	assert.Equal(t, today.AddDays(1), result.Rules[3].NextDueDate)

	skipped := map[string]bool{}
	for _, s := range result.Skipped {
		skipped[s.RuleID] = true
	}
	assert.Equal(t, map[string]bool{"malformed": true, "orphan": true}, skipped)
}
