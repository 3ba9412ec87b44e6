package rates

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdBody = `{"date": "2024-05-01", "usd": {"eur": 0.9, "jpy": 155.2, "btc": 1.6e-05}}`

// rateServer serves body on /currencies/usd.json with the given status and counts hits
func rateServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/v1/currencies/usd.json":
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		case "/v1/currencies.json":
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"usd": "US Dollar", "eur": "Euro"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newProvider(primary, fallback string) *HTTPProvider {
	return NewHTTPProvider(ProviderConfig{
		PrimaryURL:  primary,
		FallbackURL: fallback,
		CacheTTL:    time.Hour,
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
}

func TestGetRates_Primary(t *testing.T) {
	primary, _ := rateServer(t, http.StatusOK, usdBody)
	p := newProvider(primary.URL+"/v1", "")

	table, err := p.GetRates(context.Background(), "usd")

	require.NoError(t, err)
	assert.Equal(t, "USD", table.Base)
	assert.Equal(t, domain.RateSourcePrimary, table.Source)
	assert.True(t, table.Usable())
	assert.True(t, decimal.RequireFromString("0.9").Equal(table.Rates["EUR"]))
	assert.True(t, decimal.RequireFromString("0.000016").Equal(table.Rates["BTC"]))
	assert.False(t, table.LastUpdated.IsZero())
}

func TestGetRates_FallbackWhenPrimaryFails(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"Server error", http.StatusBadGateway, `oops`},
		{"Garbage body", http.StatusOK, `<html>`},
		{"Missing base key", http.StatusOK, `{"date": "2024-05-01", "eur": {"usd": 1.1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary, _ := rateServer(t, tt.status, tt.body)
			fallback, _ := rateServer(t, http.StatusOK, usdBody)
			p := newProvider(primary.URL+"/v1", fallback.URL+"/v1")

			table, err := p.GetRates(context.Background(), "USD")

			require.NoError(t, err)
			assert.Equal(t, domain.RateSourceFallback, table.Source)
			assert.True(t, decimal.RequireFromString("155.2").Equal(table.Rates["JPY"]))
		})
	}
}

func TestGetRates_AllSourcesFail(t *testing.T) {
	primary, _ := rateServer(t, http.StatusInternalServerError, ``)
	fallback, _ := rateServer(t, http.StatusNotFound, ``)
	p := newProvider(primary.URL+"/v1", fallback.URL+"/v1")

	table, err := p.GetRates(context.Background(), "USD")

	require.NoError(t, err)
	assert.Equal(t, domain.RateSourceError, table.Source)
	assert.Empty(t, table.Rates)
	assert.NotEmpty(t, table.Error)
	assert.False(t, table.Usable())
}

func TestGetRates_LogsComponentOnce(t *testing.T) {
	primary, _ := rateServer(t, http.StatusInternalServerError, ``)
	fallback, _ := rateServer(t, http.StatusOK, usdBody)
	var buf bytes.Buffer
	p := NewHTTPProvider(ProviderConfig{
		PrimaryURL:  primary.URL + "/v1",
		FallbackURL: fallback.URL + "/v1",
		CacheTTL:    time.Hour,
		Timeout:     2 * time.Second,
	}, zerolog.New(&buf))

	_, err := p.GetRates(context.Background(), "USD")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component":`), line)
		assert.Contains(t, line, `"component":"rates"`)
	}
}

func TestGetRates_Cache(t *testing.T) {
	primary, hits := rateServer(t, http.StatusOK, usdBody)
	p := newProvider(primary.URL+"/v1", "")
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := p.GetRates(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourcePrimary, first.Source)

	now = now.Add(59 * time.Minute)
	second, err := p.GetRates(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourceCache, second.Source)
	assert.Equal(t, first.LastUpdated, second.LastUpdated)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	// Callers cannot corrupt the cache
	second.Rates["EUR"] = decimal.Zero
	cached, err := p.GetRates(ctx, "USD")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.9").Equal(cached.Rates["EUR"]))

	now = now.Add(2 * time.Minute)
	third, err := p.GetRates(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourcePrimary, third.Source)
	assert.True(t, decimal.RequireFromString("0.9").Equal(third.Rates["EUR"]))
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestGetRates_EmptyBase(t *testing.T) {
	p := newProvider("http://127.0.0.1:1", "")

	_, err := p.GetRates(context.Background(), " ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListCurrencies(t *testing.T) {
	primary, _ := rateServer(t, http.StatusServiceUnavailable, ``)
	fallback, _ := rateServer(t, http.StatusOK, usdBody)
	p := newProvider(primary.URL+"/v1", fallback.URL+"/v1")

	names, err := p.ListCurrencies(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"USD": "US Dollar", "EUR": "Euro"}, names)
}
