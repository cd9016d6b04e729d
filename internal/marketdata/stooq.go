package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/trogers1052/market-radar/internal/models"
)

const stooqBaseURL = "https://stooq.com"

// StooqProvider reads daily history CSVs from stooq.com. No API key, which
// makes it the fallback of last resort: delayed end-of-day data only.
type StooqProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewStooqProvider(minDelay time.Duration) *StooqProvider {
	return &StooqProvider{
		baseURL: stooqBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

func (p *StooqProvider) Name() string { return "stooq" }

type stooqBar struct {
	close  float64
	high   float64
	low    float64
	volume float64
}

// GetSnapshot downloads the daily history for the symbol and derives a
// snapshot from the last two bars. US tickers are suffixed ".us" on stooq.
func (p *StooqProvider) GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	stooqSymbol := strings.ToLower(symbol) + ".us"
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", p.baseURL, url.QueryEscape(stooqSymbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stooq request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq returned status %d", resp.StatusCode)
	}

	bars, err := parseStooqCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	snap := &models.MarketSnapshot{Symbol: symbol}
	n := len(bars)
	if n == 0 {
		// Unknown symbols come back as "No data" rather than an error.
		return snap, nil
	}

	last := bars[n-1]
	if last.close > 0 {
		snap.Price = models.Float(last.close)
	}
	if last.high > 0 {
		snap.HighToday = models.Float(last.high)
	}
	if last.low > 0 {
		snap.LowToday = models.Float(last.low)
	}
	if last.volume > 0 {
		snap.Volume = models.Float(last.volume)
	}
	if n > 1 && bars[n-2].close > 0 {
		snap.PrevClose = models.Float(bars[n-2].close)
	}

	if n > 1 {
		start := n - 11
		if start < 0 {
			start = 0
		}
		var sum float64
		var count int
		for _, bar := range bars[start : n-1] {
			if bar.volume > 0 {
				sum += bar.volume
				count++
			}
		}
		if count > 0 {
			snap.AvgVolume10d = models.Float(sum / float64(count))
		}
	}

	return snap, nil
}

// parseStooqCSV reads Date,Open,High,Low,Close,Volume rows, skipping the
// header and any malformed lines.
func parseStooqCSV(r io.Reader) ([]stooqBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse stooq csv: %w", err)
	}

	var bars []stooqBar
	for i, rec := range records {
		if i == 0 || len(rec) < 6 {
			continue
		}
		closePx, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			continue
		}
		bar := stooqBar{close: closePx}
		if v, err := strconv.ParseFloat(rec[2], 64); err == nil {
			bar.high = v
		}
		if v, err := strconv.ParseFloat(rec[3], 64); err == nil {
			bar.low = v
		}
		if v, err := strconv.ParseFloat(rec[5], 64); err == nil {
			bar.volume = v
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
