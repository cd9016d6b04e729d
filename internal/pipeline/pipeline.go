package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/trogers1052/market-radar/internal/collector"
	"github.com/trogers1052/market-radar/internal/dedup"
	"github.com/trogers1052/market-radar/internal/marketdata"
	"github.com/trogers1052/market-radar/internal/models"
	"github.com/trogers1052/market-radar/internal/signals"
	"github.com/trogers1052/market-radar/internal/validation"
)

// Scorer judges relevance and impact of a headline.
type Scorer interface {
	Relevant(title, summary string) (bool, string)
	Score(source, title, summary string) (int, string)
}

// Resolver extracts a ticker symbol from article text.
type Resolver interface {
	Resolve(title, summary string) string
}

// ProfileSource supplies optional company reference data.
type ProfileSource interface {
	CompanyProfile(ctx context.Context, symbol string) *marketdata.CompanyProfile
}

// Store persists terminal pipeline outcomes.
type Store interface {
	SaveNewsEvent(n *models.NewsItem) error
	SaveTradingSignal(s *models.TradingSignal) (int, error)
}

// Publisher emits pipeline events for downstream consumers.
type Publisher interface {
	PublishNewsValidated(ctx context.Context, item *models.NewsItem) error
	PublishSignalGenerated(ctx context.Context, signal *models.TradingSignal) error
}

// Notifier delivers outcomes to a human.
type Notifier interface {
	NotifyNews(ctx context.Context, item *models.NewsItem) error
	NotifySignal(ctx context.Context, signal *models.TradingSignal) error
}

// Stats counts what happened in one poll cycle.
type Stats struct {
	Fetched    int
	Duplicates int
	Irrelevant int
	NoTicker   int
	LowImpact  int
	Validated  int
	Rejected   int
	Signals    int
	Errors     int
}

// Config holds the pipeline gates.
type Config struct {
	MinImpactScore int
	// MaxIterations stops the poll loop after N cycles; 0 runs forever.
	// Used for one-shot runs and smoke checks.
	MaxIterations int
}

// Pipeline runs each article through dedup, relevance, ticker resolution,
// impact scoring, market validation and signal generation, sequentially.
// One failing article never takes down the cycle.
type Pipeline struct {
	cfg        Config
	collectors []collector.Collector
	dedup      dedup.Store
	scorer     Scorer
	resolver   Resolver
	snapshots  marketdata.SnapshotSource
	profiles   ProfileSource
	validator  *validation.Validator
	engine     *signals.Engine
	store      Store
	publisher  Publisher
	notifier   Notifier
	log        *logrus.Logger
}

// Deps bundles the pipeline's collaborators. Publisher, profiles and store
// may be nil; the corresponding steps are skipped.
type Deps struct {
	Collectors []collector.Collector
	Dedup      dedup.Store
	Scorer     Scorer
	Resolver   Resolver
	Snapshots  marketdata.SnapshotSource
	Profiles   ProfileSource
	Validator  *validation.Validator
	Engine     *signals.Engine
	Store      Store
	Publisher  Publisher
	Notifier   Notifier
}

func New(cfg Config, deps Deps, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		collectors: deps.Collectors,
		dedup:      deps.Dedup,
		scorer:     deps.Scorer,
		resolver:   deps.Resolver,
		snapshots:  deps.Snapshots,
		profiles:   deps.Profiles,
		validator:  deps.Validator,
		engine:     deps.Engine,
		store:      deps.Store,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		log:        log,
	}
}

// Run polls on the given interval until the context is cancelled. The first
// cycle runs immediately.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for iteration := 1; ; iteration++ {
		stats := p.RunOnce(ctx)
		p.log.WithFields(logrus.Fields{
			"fetched":    stats.Fetched,
			"duplicates": stats.Duplicates,
			"irrelevant": stats.Irrelevant,
			"no_ticker":  stats.NoTicker,
			"low_impact": stats.LowImpact,
			"validated":  stats.Validated,
			"signals":    stats.Signals,
			"errors":     stats.Errors,
		}).Info("poll cycle complete")

		if p.cfg.MaxIterations > 0 && iteration >= p.cfg.MaxIterations {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single poll cycle across all collectors.
func (p *Pipeline) RunOnce(ctx context.Context) Stats {
	var stats Stats

	for _, c := range p.collectors {
		items, err := c.Fetch(ctx)
		if err != nil {
			stats.Errors++
			p.log.WithError(err).WithField("source", c.Name()).Warn("collector fetch failed")
			continue
		}
		for i := range items {
			p.processArticle(ctx, &items[i], &stats)
		}
	}

	return stats
}

// ProcessItem runs one externally-supplied article through the pipeline,
// for the Kafka intake path.
func (p *Pipeline) ProcessItem(ctx context.Context, item *models.NewsItem) error {
	var stats Stats
	p.processArticle(ctx, item, &stats)
	return nil
}

func (p *Pipeline) processArticle(ctx context.Context, item *models.NewsItem, stats *Stats) {
	defer func() {
		if r := recover(); r != nil {
			stats.Errors++
			p.log.WithField("title", item.Title).Errorf("panic processing article: %v", r)
		}
	}()

	stats.Fetched++

	if item.UID == "" {
		item.UID = dedup.MakeUID(item.Title, item.Link)
	}
	seen, err := p.dedup.Seen(ctx, item.UID)
	if err != nil {
		stats.Errors++
		p.log.WithError(err).Warn("dedup check failed, processing anyway")
	} else if seen {
		stats.Duplicates++
		return
	}

	if relevant, _ := p.scorer.Relevant(item.Title, item.Summary); !relevant {
		stats.Irrelevant++
		return
	}

	item.Ticker = p.resolver.Resolve(item.Title, item.Summary)
	item.ImpactScore, item.ImpactReason = p.scorer.Score(item.Source, item.Title, item.Summary)

	if item.Ticker == "" {
		// Majority outcome for general news, not an error.
		stats.NoTicker++
		p.persist(item, stats)
		return
	}
	if item.ImpactScore < p.cfg.MinImpactScore {
		stats.LowImpact++
		p.persist(item, stats)
		return
	}

	snap := p.snapshots.GetSnapshot(ctx, item.Ticker)
	res := p.validator.Validate(item.Ticker, snap)
	item.GapPct = res.GapPct
	item.VolSpike = res.VolSpike
	item.Validated = res.Validated
	item.ValidationReason = res.Reason

	p.persist(item, stats)

	if !res.Validated {
		stats.Rejected++
		return
	}
	stats.Validated++

	p.log.WithFields(logrus.Fields{
		"ticker":       item.Ticker,
		"impact_score": item.ImpactScore,
		"reason":       res.Reason,
	}).Info("news validated: " + item.Title)

	if p.publisher != nil {
		if err := p.publisher.PublishNewsValidated(ctx, item); err != nil {
			stats.Errors++
			p.log.WithError(err).Warn("failed to publish validated news")
		}
	}
	if p.notifier != nil {
		if err := p.notifier.NotifyNews(ctx, item); err != nil {
			stats.Errors++
			p.log.WithError(err).Warn("failed to notify validated news")
		}
	}

	p.generateSignal(ctx, item, snap, stats)
}

func (p *Pipeline) generateSignal(ctx context.Context, item *models.NewsItem, snap *models.MarketSnapshot, stats *Stats) {
	// A nil engine disables signal generation entirely.
	if p.engine == nil || snap == nil || snap.Price == nil {
		return
	}

	opp := signals.Opportunity{
		Ticker:       item.Ticker,
		CurrentPrice: *snap.Price,
		PrevClose:    snap.PrevClose,
		HighToday:    snap.HighToday,
		LowToday:     snap.LowToday,
		Volume:       snap.Volume,
		AvgVolume:    snap.AvgVolume10d,
		Headline:     item.Title,
		NewsSource:   item.Source,
		ImpactScore:  item.ImpactScore,
	}
	if t, ok := parseNewsTime(item.Published); ok {
		opp.NewsTime = &t
	}
	if p.profiles != nil {
		if profile := p.profiles.CompanyProfile(ctx, item.Ticker); profile != nil && profile.SharesOutstanding > 0 {
			out := profile.SharesOutstanding
			opp.OutstandingShares = &out
		}
	}

	sig := p.engine.AnalyzeOpportunity(opp)
	if sig == nil {
		return
	}
	if ok, reason := p.engine.ValidateSignal(sig); !ok {
		p.log.WithFields(logrus.Fields{
			"ticker": sig.Ticker,
			"reason": reason,
		}).Info("signal rejected")
		return
	}
	stats.Signals++

	if p.store != nil {
		if _, err := p.store.SaveTradingSignal(sig); err != nil {
			stats.Errors++
			p.log.WithError(err).Warn("failed to save trading signal")
		}
	}
	if p.publisher != nil {
		if err := p.publisher.PublishSignalGenerated(ctx, sig); err != nil {
			stats.Errors++
			p.log.WithError(err).Warn("failed to publish signal")
		}
	}
	if p.notifier != nil {
		if err := p.notifier.NotifySignal(ctx, sig); err != nil {
			stats.Errors++
			p.log.WithError(err).Warn("failed to notify signal")
		}
	}
}

func (p *Pipeline) persist(item *models.NewsItem, stats *Stats) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveNewsEvent(item); err != nil {
		stats.Errors++
		p.log.WithError(err).WithField("uid", item.UID).Warn("failed to save news event")
	}
}

func parseNewsTime(published string) (time.Time, bool) {
	if published == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC3339} {
		if t, err := time.Parse(layout, published); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
