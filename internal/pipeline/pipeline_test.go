package pipeline

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/market-radar/internal/collector"
	"github.com/trogers1052/market-radar/internal/dedup"
	"github.com/trogers1052/market-radar/internal/models"
	"github.com/trogers1052/market-radar/internal/signals"
	"github.com/trogers1052/market-radar/internal/validation"
)

type fakeCollector struct {
	items []models.NewsItem
}

func (f *fakeCollector) Name() string { return "fake-wire" }

func (f *fakeCollector) Fetch(_ context.Context) ([]models.NewsItem, error) {
	out := make([]models.NewsItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

type fakeScorer struct {
	relevant bool
	score    int
}

func (f *fakeScorer) Relevant(_, _ string) (bool, string) {
	if f.relevant {
		return true, "matched"
	}
	return false, "no stock market indicators found"
}

func (f *fakeScorer) Score(_, _, _ string) (int, string) { return f.score, "scored" }

type fakeResolver struct {
	ticker string
}

func (f *fakeResolver) Resolve(_, _ string) string { return f.ticker }

type fakeSnapshots struct {
	snap *models.MarketSnapshot
}

func (f *fakeSnapshots) GetSnapshot(_ context.Context, _ string) *models.MarketSnapshot {
	return f.snap
}

type fakeStore struct {
	events  []*models.NewsItem
	signals []*models.TradingSignal
}

func (f *fakeStore) SaveNewsEvent(n *models.NewsItem) error {
	copied := *n
	f.events = append(f.events, &copied)
	return nil
}

func (f *fakeStore) SaveTradingSignal(s *models.TradingSignal) (int, error) {
	f.signals = append(f.signals, s)
	return len(f.signals), nil
}

type fakePublisher struct {
	news    []*models.NewsItem
	signals []*models.TradingSignal
}

func (f *fakePublisher) PublishNewsValidated(_ context.Context, item *models.NewsItem) error {
	f.news = append(f.news, item)
	return nil
}

func (f *fakePublisher) PublishSignalGenerated(_ context.Context, sig *models.TradingSignal) error {
	f.signals = append(f.signals, sig)
	return nil
}

type fakeNotifier struct {
	news    int
	signals int
}

func (f *fakeNotifier) NotifyNews(_ context.Context, _ *models.NewsItem) error {
	f.news++
	return nil
}

func (f *fakeNotifier) NotifySignal(_ context.Context, _ *models.TradingSignal) error {
	f.signals++
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestPipeline(c collector.Collector, scorer Scorer, resolver Resolver, snap *models.MarketSnapshot, store *fakeStore, pub *fakePublisher, not *fakeNotifier) *Pipeline {
	return New(
		Config{MinImpactScore: 70},
		Deps{
			Collectors: []collector.Collector{c},
			Dedup:      dedup.NewMemoryStore(),
			Scorer:     scorer,
			Resolver:   resolver,
			Snapshots:  &fakeSnapshots{snap: snap},
			Validator:  validation.New(4.0, 1.8),
			Engine:     signals.NewEngine(signals.Config{MinConfidence: 40, MaxRiskPct: 15, MinRiskReward: 1.5}, nil),
			Store:      store,
			Publisher:  pub,
			Notifier:   not,
		},
		quietLogger(),
	)
}

func article() models.NewsItem {
	return models.NewsItem{
		Source:  "GlobeNewswire",
		Title:   "Locafy announces major partnership",
		Link:    "https://example.com/locafy",
		Summary: "Locafy Limited (NASDAQ: LCFY) announced a partnership.",
	}
}

func TestPipelineFullPass(t *testing.T) {
	snap := &models.MarketSnapshot{
		Symbol:       "LCFY",
		Price:        models.Float(7.69),
		PrevClose:    models.Float(7.41),
		HighToday:    models.Float(7.74),
		LowToday:     models.Float(7.41),
		Volume:       models.Float(74000),
		AvgVolume10d: models.Float(10000),
	}
	store := &fakeStore{}
	pub := &fakePublisher{}
	not := &fakeNotifier{}

	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article()}},
		&fakeScorer{relevant: true, score: 75},
		&fakeResolver{ticker: "LCFY"},
		snap, store, pub, not,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Validated)
	assert.Equal(t, 1, stats.Signals)
	assert.Equal(t, 0, stats.Errors)

	require.Len(t, store.events, 1)
	assert.True(t, store.events[0].Validated)
	assert.Equal(t, "LCFY", store.events[0].Ticker)
	require.NotNil(t, store.events[0].VolSpike)
	assert.InDelta(t, 7.4, *store.events[0].VolSpike, 1e-9)

	require.Len(t, store.signals, 1)
	assert.Equal(t, models.SignalTypeBuy, store.signals[0].SignalType)

	assert.Len(t, pub.news, 1)
	assert.Len(t, pub.signals, 1)
	assert.Equal(t, 1, not.news)
	assert.Equal(t, 1, not.signals)
}

func TestPipelineDeduplicates(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article(), article()}},
		&fakeScorer{relevant: true, score: 75},
		&fakeResolver{ticker: ""},
		nil, store, nil, nil,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Duplicates)

	// Same story again next cycle.
	stats = p.RunOnce(context.Background())
	assert.Equal(t, 2, stats.Duplicates)
	assert.Len(t, store.events, 1)
}

func TestPipelineIrrelevantSkipped(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article()}},
		&fakeScorer{relevant: false, score: 90},
		&fakeResolver{ticker: "LCFY"},
		nil, store, nil, nil,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.Irrelevant)
	assert.Empty(t, store.events, "irrelevant articles are not persisted")
}

func TestPipelineNoTickerStillPersisted(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article()}},
		&fakeScorer{relevant: true, score: 90},
		&fakeResolver{ticker: ""},
		nil, store, nil, nil,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.NoTicker)
	require.Len(t, store.events, 1)
	assert.Empty(t, store.events[0].Ticker)
	assert.False(t, store.events[0].Validated)
}

func TestPipelineLowImpactGate(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article()}},
		&fakeScorer{relevant: true, score: 40},
		&fakeResolver{ticker: "LCFY"},
		nil, store, pub, nil,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.LowImpact)
	require.Len(t, store.events, 1, "low-impact articles stay auditable")
	assert.Empty(t, pub.news)
}

func TestPipelineUnvalidatedRejected(t *testing.T) {
	// Quiet market: below both thresholds.
	snap := &models.MarketSnapshot{
		Symbol:       "LCFY",
		Price:        models.Float(7.45),
		PrevClose:    models.Float(7.41),
		Volume:       models.Float(12000),
		AvgVolume10d: models.Float(10000),
	}
	store := &fakeStore{}
	pub := &fakePublisher{}
	not := &fakeNotifier{}

	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article()}},
		&fakeScorer{relevant: true, score: 75},
		&fakeResolver{ticker: "LCFY"},
		snap, store, pub, not,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0, stats.Validated)
	assert.Equal(t, 0, stats.Signals)

	require.Len(t, store.events, 1)
	assert.False(t, store.events[0].Validated)
	require.NotNil(t, store.events[0].GapPct, "near-miss metrics are recorded")
	assert.Empty(t, pub.news)
	assert.Equal(t, 0, not.news)
}

func TestPipelineNoSnapshot(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		&fakeCollector{items: []models.NewsItem{article()}},
		&fakeScorer{relevant: true, score: 75},
		&fakeResolver{ticker: "LCFY"},
		nil, store, nil, nil,
	)

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.Rejected)
	require.Len(t, store.events, 1)
	assert.Equal(t, "no-price-or-prev-close", store.events[0].ValidationReason)
}

func TestPipelineProcessItemIntake(t *testing.T) {
	snap := &models.MarketSnapshot{
		Symbol:    "LCFY",
		Price:     models.Float(7.80),
		PrevClose: models.Float(7.41),
	}
	store := &fakeStore{}
	p := newTestPipeline(
		&fakeCollector{},
		&fakeScorer{relevant: true, score: 80},
		&fakeResolver{ticker: "LCFY"},
		snap, store, nil, nil,
	)

	item := article()
	require.NoError(t, p.ProcessItem(context.Background(), &item))
	require.Len(t, store.events, 1)
	assert.True(t, store.events[0].Validated, "5.26% gap clears the threshold")
}
