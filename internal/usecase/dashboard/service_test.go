package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockConverter is a mock implementation of Converter for testing
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(decimal.Decimal), args.Bool(1)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// unitRate expects the conversion of one unit of from into to
func unitRate(m *MockConverter, from, to string, rate string) {
	m.On("Convert", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(1)) }), from, to).
		Return(dec(rate), rate != "0")
}

func sampleState() *domain.LedgerState {
	s := domain.NewLedgerState()
	s.Wallets = []domain.Wallet{
		{ID: "w1", Name: "Main Ops", Kind: domain.WalletKindFiat, BaseCurrency: "USD", Balance: dec("8275")},
		{ID: "w2", Name: "Euro Trip", Kind: domain.WalletKindFiat, BaseCurrency: "EUR", Balance: dec("2000")},
		{ID: "w3", Name: "Cold Storage", Kind: domain.WalletKindCrypto, BaseCurrency: "BTC", Balance: dec("0.45")},
		{ID: "w4", Name: "Solana Degen", Kind: domain.WalletKindCrypto, BaseCurrency: "SOL", Balance: dec("50")},
	}
	s.Transactions = []domain.Transaction{
		{ID: "t1", WalletID: "w1", Date: domain.NewDate(2024, 5, 1), Amount: dec("8500"), Currency: "USD", ConvertedAmount: dec("8500"), Type: domain.TransactionTypeIncome, Category: "Salary"},
		{ID: "t2", WalletID: "w1", Date: domain.NewDate(2024, 4, 30), Amount: dec("120"), Currency: "USD", ConvertedAmount: dec("120"), Type: domain.TransactionTypeExpense, Category: "Tech"},
		{ID: "t5", WalletID: "w1", Date: domain.NewDate(2024, 5, 1), Amount: dec("15500"), Currency: "JPY", ConvertedAmount: dec("105"), Type: domain.TransactionTypeExpense, Category: "Food"},
		{ID: "t3", WalletID: "w2", Date: domain.NewDate(2024, 4, 24), Amount: dec("2000"), Currency: "EUR", ConvertedAmount: dec("2000"), Type: domain.TransactionTypeIncome, Category: "Freelance"},
		{ID: "t7", WalletID: "w2", Date: domain.NewDate(2024, 5, 3), Amount: dec("40"), Currency: "EUR", ConvertedAmount: dec("40"), Type: domain.TransactionTypeExpense, Category: "Food"},
	}
	return s
}

func TestGetNetWorth(t *testing.T) {
	ctx := context.Background()
	conv := new(MockConverter)
	unitRate(conv, "EUR", "USD", "1.1")
	unitRate(conv, "BTC", "USD", "60000")
	unitRate(conv, "SOL", "USD", "0")
	unitRate(conv, "JPY", "USD", "0.0068")
	service := NewDashboardService(conv)

	result, err := service.GetNetWorth(ctx, sampleState(), "usd", domain.NewDate(2024, 5, 1))

	require.NoError(t, err)
	assert.Equal(t, "USD", result.Currency)
	// 8275 + 2000*1.1 + 0.45*60000
	assert.True(t, dec("37475").Equal(result.Total), "got %s", result.Total)
	assert.Equal(t, []string{"SOL"}, result.Unpriced)

	require.Len(t, result.Wallets, 4)
	assert.True(t, result.Wallets[1].Priced)
	assert.True(t, dec("2200").Equal(result.Wallets[1].Value))
	assert.False(t, result.Wallets[3].Priced)
	assert.True(t, result.Wallets[3].Value.IsZero())

	// Today: +8500 USD - 15500 JPY * 0.0068
	assert.True(t, dec("8394.6").Equal(result.TodayChange), "got %s", result.TodayChange)
	assert.True(t, result.ChangePercent.IsPositive())

	// One rate lookup per currency
	conv.AssertNumberOfCalls(t, "Convert", 4)
}

func TestGetNetWorth_EmptyLedger(t *testing.T) {
	service := NewDashboardService(new(MockConverter))

	result, err := service.GetNetWorth(context.Background(), domain.NewLedgerState(), "EUR", domain.NewDate(2024, 5, 1))

	require.NoError(t, err)
	assert.True(t, result.Total.IsZero())
	assert.True(t, result.ChangePercent.IsZero())
	assert.Empty(t, result.Unpriced)
}

func TestGetMonthlyStats(t *testing.T) {
	ctx := context.Background()
	conv := new(MockConverter)
	unitRate(conv, "USD", "EUR", "0.9")
	unitRate(conv, "JPY", "EUR", "0")
	service := NewDashboardService(conv)

	stats, err := service.GetMonthlyStats(ctx, sampleState(), "EUR", 2024, time.May)

	require.NoError(t, err)
	assert.True(t, dec("7650").Equal(stats.Income), "got %s", stats.Income) // 8500 * 0.9
	assert.True(t, dec("40").Equal(stats.Expense), "got %s", stats.Expense) // JPY unpriced
	assert.True(t, dec("7610").Equal(stats.Net))
	assert.Equal(t, []string{"JPY"}, stats.Unpriced)
}

func TestGetCategoryMatrix(t *testing.T) {
	ctx := context.Background()
	conv := new(MockConverter)
	unitRate(conv, "JPY", "USD", "0.0068")
	unitRate(conv, "EUR", "USD", "1.1")
	service := NewDashboardService(conv)
	state := sampleState()
	state.Transactions = append(state.Transactions, domain.Transaction{
		ID: "t8", WalletID: "w1", Date: domain.NewDate(2024, 2, 2), Amount: dec("9"), Currency: "USD",
		ConvertedAmount: dec("9"), Type: domain.TransactionTypeExpense, Category: "Unlisted",
	})

	matrix, err := service.GetCategoryMatrix(ctx, state, "USD", 2024)

	require.NoError(t, err)
	assert.Len(t, matrix.Categories, 2)
	food := matrix.Categories["Food"]
	assert.True(t, dec("149.4").Equal(food[time.May-1]), "got %s", food[time.May-1]) // 105.4 + 44
	assert.True(t, food[time.January-1].IsZero())
	tech := matrix.Categories["Tech"]
	assert.True(t, dec("120").Equal(tech[time.April-1]))
	assert.NotContains(t, matrix.Categories, "Unlisted")
}
