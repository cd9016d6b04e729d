package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/market-radar/internal/models"
)

type fakeProvider struct {
	name  string
	snap  *models.MarketSnapshot
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GetSnapshot(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.snap == nil {
		return &models.MarketSnapshot{Symbol: symbol}, nil
	}
	return f.snap, nil
}

func TestGatewayFallback(t *testing.T) {
	t.Run("falls back when first provider has no price", func(t *testing.T) {
		unpriced := &fakeProvider{name: "primary"}
		priced := &fakeProvider{
			name: "secondary",
			snap: &models.MarketSnapshot{Symbol: "AAPL", Price: models.Float(50)},
		}

		g := NewGateway(nil)
		g.Register(unpriced, 1)
		g.Register(priced, 2)

		snap := g.GetSnapshot(context.Background(), "AAPL")
		require.NotNil(t, snap)
		assert.Equal(t, 50.0, *snap.Price)

		stats := g.Stats()
		require.Len(t, stats, 2)
		assert.Equal(t, "primary", stats[0].Name)
		assert.Equal(t, int64(1), stats[0].Requests)
		assert.Equal(t, int64(1), stats[0].Failures)
		assert.Equal(t, int64(0), stats[0].Successes)
		assert.Equal(t, "secondary", stats[1].Name)
		assert.Equal(t, int64(1), stats[1].Requests)
		assert.Equal(t, int64(1), stats[1].Successes)
		assert.Equal(t, int64(0), stats[1].Failures)
	})

	t.Run("falls back on provider error", func(t *testing.T) {
		broken := &fakeProvider{name: "broken", err: errors.New("connection refused")}
		priced := &fakeProvider{
			name: "backup",
			snap: &models.MarketSnapshot{Symbol: "TSLA", Price: models.Float(201.5)},
		}

		g := NewGateway(nil)
		g.Register(broken, 1)
		g.Register(priced, 2)

		snap := g.GetSnapshot(context.Background(), "TSLA")
		require.NotNil(t, snap)
		assert.Equal(t, 201.5, *snap.Price)
	})

	t.Run("returns nil when all providers exhausted", func(t *testing.T) {
		g := NewGateway(nil)
		g.Register(&fakeProvider{name: "a"}, 1)
		g.Register(&fakeProvider{name: "b", err: errors.New("timeout")}, 2)

		assert.Nil(t, g.GetSnapshot(context.Background(), "XYZ"))

		for _, s := range g.Stats() {
			assert.Equal(t, int64(1), s.Failures, s.Name)
		}
	})

	t.Run("priority order wins over registration order", func(t *testing.T) {
		second := &fakeProvider{
			name: "second",
			snap: &models.MarketSnapshot{Symbol: "MSFT", Price: models.Float(2)},
		}
		first := &fakeProvider{
			name: "first",
			snap: &models.MarketSnapshot{Symbol: "MSFT", Price: models.Float(1)},
		}

		g := NewGateway(nil)
		g.Register(second, 2)
		g.Register(first, 1)

		snap := g.GetSnapshot(context.Background(), "MSFT")
		require.NotNil(t, snap)
		assert.Equal(t, 1.0, *snap.Price)
		assert.Equal(t, 0, second.calls)
	})

	t.Run("higher priority stops the chain", func(t *testing.T) {
		priced := &fakeProvider{
			name: "priced",
			snap: &models.MarketSnapshot{Symbol: "NVDA", Price: models.Float(100)},
		}
		never := &fakeProvider{name: "never"}

		g := NewGateway(nil)
		g.Register(priced, 1)
		g.Register(never, 2)

		g.GetSnapshot(context.Background(), "NVDA")
		assert.Equal(t, 1, priced.calls)
		assert.Equal(t, 0, never.calls)
	})
}

type fakeProfileProvider struct {
	fakeProvider
	profile *CompanyProfile
	pErr    error
}

func (f *fakeProfileProvider) CompanyProfile(_ context.Context, _ string) (*CompanyProfile, error) {
	return f.profile, f.pErr
}

func TestGatewayCompanyProfile(t *testing.T) {
	t.Run("skips providers without the capability", func(t *testing.T) {
		plain := &fakeProvider{name: "plain"}
		withProfile := &fakeProfileProvider{
			fakeProvider: fakeProvider{name: "rich"},
			profile:      &CompanyProfile{Symbol: "AAPL", Name: "Apple Inc"},
		}

		g := NewGateway(nil)
		g.Register(plain, 1)
		g.Register(withProfile, 2)

		profile := g.CompanyProfile(context.Background(), "AAPL")
		require.NotNil(t, profile)
		assert.Equal(t, "Apple Inc", profile.Name)
	})

	t.Run("skips unsupported symbols", func(t *testing.T) {
		unsupported := &fakeProfileProvider{
			fakeProvider: fakeProvider{name: "first"},
			pErr:         ErrUnsupported,
		}
		good := &fakeProfileProvider{
			fakeProvider: fakeProvider{name: "second"},
			profile:      &CompanyProfile{Symbol: "LCFY", Name: "Locafy Limited"},
		}

		g := NewGateway(nil)
		g.Register(unsupported, 1)
		g.Register(good, 2)

		profile := g.CompanyProfile(context.Background(), "LCFY")
		require.NotNil(t, profile)
		assert.Equal(t, "Locafy Limited", profile.Name)
	})

	t.Run("returns nil when no provider has data", func(t *testing.T) {
		g := NewGateway(nil)
		g.Register(&fakeProvider{name: "plain"}, 1)

		assert.Nil(t, g.CompanyProfile(context.Background(), "XYZ"))
	})
}

func TestSnapshotCache(t *testing.T) {
	now := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	priced := &fakeProvider{
		name: "src",
		snap: &models.MarketSnapshot{Symbol: "AAPL", Price: models.Float(190)},
	}
	g := NewGateway(nil)
	g.Register(priced, 1)

	cache := NewSnapshotCache(g, 20*time.Second, clock)

	first := cache.GetSnapshot(context.Background(), "AAPL")
	second := cache.GetSnapshot(context.Background(), "AAPL")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 1, priced.calls, "second lookup should be served from cache")

	now = now.Add(21 * time.Second)
	third := cache.GetSnapshot(context.Background(), "AAPL")
	require.NotNil(t, third)
	assert.Equal(t, 2, priced.calls, "expired entry should be refetched")
}
