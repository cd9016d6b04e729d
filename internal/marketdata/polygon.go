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

const polygonBaseURL = "https://api.polygon.io"

// PolygonProvider fetches previous-day aggregates from polygon.io. The free
// tier allows 5 calls/minute, hence the long default delay between calls.
type PolygonProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewPolygonProvider(apiKey string, minDelay time.Duration) *PolygonProvider {
	return &PolygonProvider{
		apiKey:  apiKey,
		baseURL: polygonBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

func (p *PolygonProvider) Name() string { return "polygon" }

type polygonAggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Close  float64 `json:"c"`
		Open   float64 `json:"o"`
		High   float64 `json:"h"`
		Low    float64 `json:"l"`
		Volume float64 `json:"v"`
	} `json:"results"`
}

// GetSnapshot uses the last two daily bars: the latest close stands in for
// the current price, the bar before it supplies the previous close. Delayed
// data, but good enough as a fallback when the primary quote source is down.
func (p *PolygonProvider) GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=50&apiKey=%s",
		p.baseURL, url.PathEscape(symbol),
		from.Format("2006-01-02"), to.Format("2006-01-02"),
		url.QueryEscape(p.apiKey))

	var aggs polygonAggsResponse
	if err := p.getJSON(ctx, endpoint, &aggs); err != nil {
		return nil, err
	}

	snap := &models.MarketSnapshot{Symbol: symbol}
	n := len(aggs.Results)
	if n == 0 {
		return snap, nil
	}

	last := aggs.Results[n-1]
	if last.Close > 0 {
		snap.Price = models.Float(last.Close)
	}
	if last.High > 0 {
		snap.HighToday = models.Float(last.High)
	}
	if last.Low > 0 {
		snap.LowToday = models.Float(last.Low)
	}
	if last.Volume > 0 {
		snap.Volume = models.Float(last.Volume)
	}
	if n > 1 && aggs.Results[n-2].Close > 0 {
		snap.PrevClose = models.Float(aggs.Results[n-2].Close)
	}

	// Average the ten bars preceding the latest one, matching the
	// ten-day baseline the validator expects.
	if n > 1 {
		start := n - 11
		if start < 0 {
			start = 0
		}
		var sum float64
		var count int
		for _, bar := range aggs.Results[start : n-1] {
			if bar.Volume > 0 {
				sum += bar.Volume
				count++
			}
		}
		if count > 0 {
			snap.AvgVolume10d = models.Float(sum / float64(count))
		}
	}

	return snap, nil
}

func (p *PolygonProvider) getJSON(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("polygon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("polygon returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode polygon response: %w", err)
	}
	return nil
}
