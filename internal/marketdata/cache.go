package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/trogers1052/market-radar/internal/models"
)

// SnapshotSource is what the cache wraps; the Gateway satisfies it.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, symbol string) *models.MarketSnapshot
}

type cachedSnapshot struct {
	snap      *models.MarketSnapshot
	fetchedAt time.Time
}

// SnapshotCache memoizes per-symbol snapshots for a short TTL so that a
// burst of articles about the same ticker costs one provider call. Nil
// results are not cached; the next caller retries the chain.
type SnapshotCache struct {
	mu      sync.Mutex
	source  SnapshotSource
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedSnapshot
}

// NewSnapshotCache wraps source with a TTL cache. A nil clock defaults to
// time.Now.
func NewSnapshotCache(source SnapshotSource, ttl time.Duration, clock func() time.Time) *SnapshotCache {
	if clock == nil {
		clock = time.Now
	}
	return &SnapshotCache{
		source:  source,
		ttl:     ttl,
		now:     clock,
		entries: make(map[string]cachedSnapshot),
	}
}

func (c *SnapshotCache) GetSnapshot(ctx context.Context, symbol string) *models.MarketSnapshot {
	c.mu.Lock()
	entry, ok := c.entries[symbol]
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return entry.snap
	}
	c.mu.Unlock()

	snap := c.source.GetSnapshot(ctx, symbol)
	if snap != nil {
		c.mu.Lock()
		c.entries[symbol] = cachedSnapshot{snap: snap, fetchedAt: c.now()}
		c.mu.Unlock()
	}
	return snap
}
