package converter

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRateProvider is a mock implementation of RateProvider for testing
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) GetRates(ctx context.Context, base string) (*domain.RateTable, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateTable), args.Error(1)
}

func TestConvert_SameCurrency(t *testing.T) {
	ctx := context.Background()
	provider := new(MockRateProvider)
	c := NewCurrencyConverter(provider, zerolog.Nop())

	got, ok := c.Convert(ctx, decimal.NewFromInt(50), "USD", "usd")

	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(50).Equal(got))
	provider.AssertNotCalled(t, "GetRates")
}

func TestConvert_UsesRateForTarget(t *testing.T) {
	ctx := context.Background()
	provider := new(MockRateProvider)
	c := NewCurrencyConverter(provider, zerolog.Nop())

	provider.On("GetRates", ctx, "USD").Return(&domain.RateTable{
		Base:   "USD",
		Source: domain.RateSourcePrimary,
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.90"),
			"JPY": decimal.RequireFromString("149.5"),
		},
	}, nil)

	got, ok := c.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR")

	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(90).Equal(got), "got %s", got)
	provider.AssertExpectations(t)
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name  string
		table *domain.RateTable
		err   error
	}{
		{
			name: "Provider error",
			err:  errors.New("network down"),
		},
		{
			name:  "Error source",
			table: &domain.RateTable{Base: "USD", Source: domain.RateSourceError, Rates: map[string]decimal.Decimal{}},
		},
		{
			name: "Target currency missing",
			table: &domain.RateTable{
				Base:   "USD",
				Source: domain.RateSourceFallback,
				Rates:  map[string]decimal.Decimal{"GBP": decimal.RequireFromString("0.79")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			provider := new(MockRateProvider)
			c := NewCurrencyConverter(provider, zerolog.Nop())

			if tt.err != nil {
				provider.On("GetRates", ctx, "USD").Return(nil, tt.err)
			} else {
				provider.On("GetRates", ctx, "USD").Return(tt.table, nil)
			}

			got, ok := c.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR")

			assert.False(t, ok)
			assert.True(t, decimal.NewFromInt(100).Equal(got), "amount must come back unconverted")
			provider.AssertNumberOfCalls(t, "GetRates", 1)
		})
	}
}
