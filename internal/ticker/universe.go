package ticker

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FetchFunc downloads an external set of ticker symbols (an index or exchange
// listing). Implementations must be safe to call repeatedly.
type FetchFunc func(ctx context.Context) (map[string]struct{}, error)

// Universe is the known-ticker registry: the union of every dictionary value
// and alias, optionally extended by downloaded listing data refreshed on a
// TTL. The clock is injected so expiry is testable.
type Universe struct {
	mu          sync.RWMutex
	base        map[string]struct{}
	extra       map[string]struct{}
	fetch       FetchFunc
	ttl         time.Duration
	now         func() time.Time
	refreshedAt time.Time
	log         *logrus.Logger
}

// UniverseOption configures a Universe.
type UniverseOption func(*Universe)

// WithSource sets an external listing source refreshed on the given TTL.
func WithSource(fetch FetchFunc, ttl time.Duration) UniverseOption {
	return func(u *Universe) {
		u.fetch = fetch
		u.ttl = ttl
	}
}

// WithClock injects the time source used for TTL checks.
func WithClock(now func() time.Time) UniverseOption {
	return func(u *Universe) {
		u.now = now
	}
}

// WithLogger sets the logger used for refresh outcomes.
func WithLogger(log *logrus.Logger) UniverseOption {
	return func(u *Universe) {
		u.log = log
	}
}

// NewUniverse builds the registry from the dictionary's ticker set.
func NewUniverse(dict *Dictionary, opts ...UniverseOption) *Universe {
	u := &Universe{
		base: dict.Tickers(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Contains reports whether symbol is a known ticker. A stale external listing
// is refreshed first; refresh failures degrade to the last known set.
func (u *Universe) Contains(symbol string) bool {
	if symbol == "" {
		return false
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	u.maybeRefresh()

	u.mu.RLock()
	defer u.mu.RUnlock()
	if _, ok := u.base[symbol]; ok {
		return true
	}
	_, ok := u.extra[symbol]
	return ok
}

// Size returns the number of known tickers.
func (u *Universe) Size() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.base) + len(u.extra)
}

func (u *Universe) maybeRefresh() {
	if u.fetch == nil {
		return
	}

	u.mu.RLock()
	stale := u.refreshedAt.IsZero() || u.now().Sub(u.refreshedAt) >= u.ttl
	u.mu.RUnlock()
	if !stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetched, err := u.fetch(ctx)
	u.mu.Lock()
	defer u.mu.Unlock()
	// Mark the attempt either way so a failing source is not hammered on
	// every lookup.
	u.refreshedAt = u.now()
	if err != nil {
		if u.log != nil {
			u.log.WithError(err).Warn("ticker universe refresh failed, keeping last known set")
		}
		return
	}
	u.extra = fetched
	if u.log != nil {
		u.log.WithField("tickers", len(u.base)+len(u.extra)).Info("ticker universe refreshed")
	}
}

// NasdaqListedURL is the Nasdaq Trader symbol directory.
const NasdaqListedURL = "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt"

// FetchNasdaqListed returns a FetchFunc that downloads the Nasdaq symbol
// directory (pipe-separated, one symbol per line). Symbols longer than five
// characters or containing non-letters are dropped.
func FetchNasdaqListed(client *http.Client) FetchFunc {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return func(ctx context.Context) (map[string]struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, NasdaqListedURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download symbol directory: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("symbol directory returned status %d", resp.StatusCode)
		}

		out := make(map[string]struct{})
		scanner := bufio.NewScanner(resp.Body)
		first := true
		for scanner.Scan() {
			line := scanner.Text()
			if first { // header row
				first = false
				continue
			}
			fields := strings.Split(line, "|")
			if len(fields) == 0 {
				continue
			}
			sym := strings.TrimSpace(fields[0])
			if sym == "" || len(sym) > 5 || !isAllLetters(sym) {
				continue
			}
			out[strings.ToUpper(sym)] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read symbol directory: %w", err)
		}
		return out, nil
	}
}

func isAllLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || (r > 'Z' && r < 'a') || r > 'z' {
			return false
		}
	}
	return true
}
