package marketdata

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/market-radar/internal/models"
)

// ProviderStats is a read-only view of one provider's counters.
type ProviderStats struct {
	Name        string  `json:"name"`
	Priority    int     `json:"priority"`
	Requests    int64   `json:"requests"`
	Successes   int64   `json:"successes"`
	Failures    int64   `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
}

type registryEntry struct {
	provider  Provider
	priority  int
	requests  int64
	successes int64
	failures  int64
}

// Gateway queries a prioritized set of providers with automatic fallback.
// Lower priority is tried first. Counters are monotone for the life of the
// process and exposed through Stats.
type Gateway struct {
	mu      sync.Mutex
	entries []*registryEntry
	log     *logrus.Logger
}

// NewGateway creates an empty gateway.
func NewGateway(log *logrus.Logger) *Gateway {
	return &Gateway{log: log}
}

// Register adds a provider at the given priority (lower = tried first).
// Providers are registered once at startup and never removed.
func (g *Gateway) Register(p Provider, priority int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = append(g.entries, &registryEntry{provider: p, priority: priority})
	sort.SliceStable(g.entries, func(i, j int) bool {
		return g.entries[i].priority < g.entries[j].priority
	})
	if g.log != nil {
		g.log.WithFields(logrus.Fields{"provider": p.Name(), "priority": priority}).Info("registered market data provider")
	}
}

// GetSnapshot returns the first priced snapshot from the provider chain, or
// nil when every provider is exhausted. Provider errors and unpriced
// snapshots count as failures and fall through to the next provider; nothing
// is ever raised past this boundary.
func (g *Gateway) GetSnapshot(ctx context.Context, symbol string) *models.MarketSnapshot {
	g.mu.Lock()
	chain := make([]*registryEntry, len(g.entries))
	copy(chain, g.entries)
	g.mu.Unlock()

	for _, entry := range chain {
		g.count(entry, &entry.requests)

		snap, err := entry.provider.GetSnapshot(ctx, symbol)
		if err != nil {
			g.count(entry, &entry.failures)
			if g.log != nil {
				g.log.WithError(err).WithFields(logrus.Fields{
					"provider": entry.provider.Name(),
					"ticker":   symbol,
				}).Warn("provider error, trying next")
			}
			continue
		}
		if !snap.HasPrice() {
			g.count(entry, &entry.failures)
			if g.log != nil {
				g.log.WithFields(logrus.Fields{
					"provider": entry.provider.Name(),
					"ticker":   symbol,
				}).Debug("no priced snapshot, trying next")
			}
			continue
		}

		g.count(entry, &entry.successes)
		return snap
	}

	if g.log != nil {
		g.log.WithField("ticker", symbol).Warn("all providers exhausted")
	}
	return nil
}

// CompanyProfile returns the first profile from a provider implementing the
// capability, or nil when none does or none has data.
func (g *Gateway) CompanyProfile(ctx context.Context, symbol string) *CompanyProfile {
	g.mu.Lock()
	chain := make([]*registryEntry, len(g.entries))
	copy(chain, g.entries)
	g.mu.Unlock()

	for _, entry := range chain {
		pp, ok := entry.provider.(ProfileProvider)
		if !ok {
			continue
		}
		profile, err := pp.CompanyProfile(ctx, symbol)
		if err != nil {
			if g.log != nil && err != ErrUnsupported {
				g.log.WithError(err).WithFields(logrus.Fields{
					"provider": entry.provider.Name(),
					"ticker":   symbol,
				}).Debug("profile lookup failed")
			}
			continue
		}
		if profile == nil {
			continue
		}
		return profile
	}
	return nil
}

// Stats returns a snapshot of every provider's counters in priority order.
func (g *Gateway) Stats() []ProviderStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]ProviderStats, 0, len(g.entries))
	for _, entry := range g.entries {
		s := ProviderStats{
			Name:      entry.provider.Name(),
			Priority:  entry.priority,
			Requests:  entry.requests,
			Successes: entry.successes,
			Failures:  entry.failures,
		}
		if s.Requests > 0 {
			s.SuccessRate = float64(s.Successes) / float64(s.Requests) * 100
		}
		out = append(out, s)
	}
	return out
}

// LogStats writes one line per provider, for the end-of-poll summary.
func (g *Gateway) LogStats() {
	if g.log == nil {
		return
	}
	for _, s := range g.Stats() {
		g.log.WithFields(logrus.Fields{
			"provider":     s.Name,
			"requests":     s.Requests,
			"successes":    s.Successes,
			"failures":     s.Failures,
			"success_rate": s.SuccessRate,
		}).Info("provider stats")
	}
}

func (g *Gateway) count(entry *registryEntry, field *int64) {
	g.mu.Lock()
	*field++
	g.mu.Unlock()
}
