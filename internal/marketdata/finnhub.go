package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/trogers1052/market-radar/internal/models"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubProvider fetches quotes and company profiles from finnhub.io.
// The free tier allows 60 calls/minute; the limiter keeps us under it.
type FinnhubProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFinnhubProvider builds a provider with the given API key and minimum
// delay between calls.
func NewFinnhubProvider(apiKey string, minDelay time.Duration) *FinnhubProvider {
	return &FinnhubProvider{
		apiKey:  apiKey,
		baseURL: finnhubBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

func (p *FinnhubProvider) Name() string { return "finnhub" }

type finnhubQuote struct {
	Current   float64 `json:"c"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	PrevClose float64 `json:"pc"`
}

// GetSnapshot returns the latest quote. Finnhub reports zeros for unknown
// symbols, which comes back as an unpriced snapshot rather than an error.
func (p *FinnhubProvider) GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/quote?symbol=%s", p.baseURL, url.QueryEscape(symbol))
	var quote finnhubQuote
	if err := p.getJSON(ctx, endpoint, &quote); err != nil {
		return nil, err
	}

	snap := &models.MarketSnapshot{Symbol: symbol}
	if quote.Current > 0 {
		snap.Price = models.Float(quote.Current)
	}
	if quote.PrevClose > 0 {
		snap.PrevClose = models.Float(quote.PrevClose)
	}
	if quote.High > 0 {
		snap.HighToday = models.Float(quote.High)
	}
	if quote.Low > 0 {
		snap.LowToday = models.Float(quote.Low)
	}
	return snap, nil
}

type finnhubProfile struct {
	Name              string  `json:"name"`
	Exchange          string  `json:"exchange"`
	Industry          string  `json:"finnhubIndustry"`
	MarketCap         float64 `json:"marketCapitalization"`
	SharesOutstanding float64 `json:"shareOutstanding"`
}

// CompanyProfile fetches basic company facts. Shares outstanding come back
// in millions, which matches the float tiers the signal engine uses.
func (p *FinnhubProvider) CompanyProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/stock/profile2?symbol=%s", p.baseURL, url.QueryEscape(symbol))
	var profile finnhubProfile
	if err := p.getJSON(ctx, endpoint, &profile); err != nil {
		return nil, err
	}
	if profile.Name == "" {
		return nil, ErrUnsupported
	}

	return &CompanyProfile{
		Symbol:            symbol,
		Name:              profile.Name,
		Exchange:          profile.Exchange,
		Industry:          profile.Industry,
		MarketCap:         profile.MarketCap,
		SharesOutstanding: profile.SharesOutstanding,
	}, nil
}

func (p *FinnhubProvider) getJSON(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Finnhub-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("finnhub request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("finnhub returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode finnhub response: %w", err)
	}
	return nil
}
