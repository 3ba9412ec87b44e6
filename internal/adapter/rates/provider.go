package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// ProviderConfig configures the HTTP rate provider.
type ProviderConfig struct {
	// PrimaryURL and FallbackURL are API roots; "/currencies/{base}.json" is appended.
	PrimaryURL  string
	FallbackURL string

	// CacheTTL is how long a fetched table is served without refetching.
	CacheTTL time.Duration

	// Timeout bounds each HTTP request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client
}

type cacheEntry struct {
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// HTTPProvider fetches conversion rates from the currency API with a fallback mirror
// and an in-memory cache per base currency.
type HTTPProvider struct {
	httpClient  *http.Client
	primaryURL  string
	fallbackURL string
	ttl         time.Duration
	now         func() time.Time
	log         zerolog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewHTTPProvider creates a new HTTPProvider.
func NewHTTPProvider(config ProviderConfig, log zerolog.Logger) *HTTPProvider {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &HTTPProvider{
		httpClient:  httpClient,
		primaryURL:  strings.TrimRight(config.PrimaryURL, "/"),
		fallbackURL: strings.TrimRight(config.FallbackURL, "/"),
		ttl:         ttl,
		now:         time.Now,
		log:         log.With().Str("component", "rates").Logger(),
		cache:       make(map[string]cacheEntry),
	}
}

// GetRates returns the value of one unit of base in every currency the API knows.
// Logic:
//  1. A cached table younger than the TTL is returned as source "cache"
//  2. Otherwise the primary endpoint is tried, then the fallback
//  3. If both fail the table has source "error" and no rates; no error is returned
//
// Rate keys are upper-case currency codes.
func (p *HTTPProvider) GetRates(ctx context.Context, base string) (*domain.RateTable, error) {
	base = domain.NormalizeCurrency(base)
	if base == "" {
		return nil, fmt.Errorf("%w: empty base currency", domain.ErrInvalidInput)
	}

	// 1. Cache
	p.mu.Lock()
	entry, ok := p.cache[base]
	p.mu.Unlock()
	if ok && p.now().Sub(entry.fetchedAt) < p.ttl {
		return &domain.RateTable{
			Base:        base,
			Rates:       maps.Clone(entry.rates),
			Source:      domain.RateSourceCache,
			LastUpdated: entry.fetchedAt,
		}, nil
	}

	// 2. Primary, then fallback
	endpoints := []struct {
		url    string
		source domain.RateSource
	}{
		{p.primaryURL, domain.RateSourcePrimary},
		{p.fallbackURL, domain.RateSourceFallback},
	}

	var errs []error
	for _, ep := range endpoints {
		if ep.url == "" {
			continue
		}
		rates, err := p.fetch(ctx, ep.url, base)
		if err != nil {
			p.log.Warn().Err(err).Str("base", base).Str("source", string(ep.source)).Msg("rate endpoint failed")
			errs = append(errs, err)
			continue
		}

		fetchedAt := p.now()
		p.mu.Lock()
		p.cache[base] = cacheEntry{rates: rates, fetchedAt: fetchedAt}
		p.mu.Unlock()

		return &domain.RateTable{
			Base:        base,
			Rates:       maps.Clone(rates),
			Source:      ep.source,
			LastUpdated: fetchedAt,
		}, nil
	}

	// 3. Everything failed
	p.log.Error().Err(errors.Join(errs...)).Str("base", base).Msg("all rate sources failed")
	return &domain.RateTable{
		Base:   base,
		Rates:  map[string]decimal.Decimal{},
		Source: domain.RateSourceError,
		Error:  "failed to fetch rates",
	}, nil
}

// ListCurrencies returns the code to name map of every currency the API knows.
// Codes are upper-case.
func (p *HTTPProvider) ListCurrencies(ctx context.Context) (map[string]string, error) {
	var errs []error
	for _, root := range []string{p.primaryURL, p.fallbackURL} {
		if root == "" {
			continue
		}
		var names map[string]string
		if err := p.getJSON(ctx, root+"/currencies.json", &names); err != nil {
			errs = append(errs, err)
			continue
		}
		out := make(map[string]string, len(names))
		for code, name := range names {
			out[domain.NormalizeCurrency(code)] = name
		}
		return out, nil
	}
	return nil, fmt.Errorf("failed to list currencies: %w", errors.Join(errs...))
}

// fetch reads {root}/currencies/{base}.json, shaped {"date": "...", "<base>": {"<code>": rate}}
func (p *HTTPProvider) fetch(ctx context.Context, root, base string) (map[string]decimal.Decimal, error) {
	key := strings.ToLower(base)

	var body map[string]json.RawMessage
	if err := p.getJSON(ctx, root+"/currencies/"+key+".json", &body); err != nil {
		return nil, err
	}

	raw, ok := body[key]
	if !ok {
		return nil, fmt.Errorf("response has no %q rates", key)
	}

	var parsed map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("response has empty %q rates", key)
	}

	rates := make(map[string]decimal.Decimal, len(parsed))
	for code, rate := range parsed {
		rates[domain.NormalizeCurrency(code)] = rate
	}
	return rates, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("request to %s failed: %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
