package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/trogers1052/market-radar/internal/api"
	"github.com/trogers1052/market-radar/internal/collector"
	"github.com/trogers1052/market-radar/internal/config"
	"github.com/trogers1052/market-radar/internal/database"
	"github.com/trogers1052/market-radar/internal/dedup"
	"github.com/trogers1052/market-radar/internal/kafka"
	"github.com/trogers1052/market-radar/internal/logging"
	"github.com/trogers1052/market-radar/internal/marketdata"
	"github.com/trogers1052/market-radar/internal/notify"
	"github.com/trogers1052/market-radar/internal/pipeline"
	"github.com/trogers1052/market-radar/internal/scoring"
	"github.com/trogers1052/market-radar/internal/signals"
	"github.com/trogers1052/market-radar/internal/ticker"
	"github.com/trogers1052/market-radar/internal/validation"
)

const stooqRateDelay = 2 * time.Second

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New()

	log.Info("starting market radar")

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	migrationsPath := filepath.Join("db", "migrations")
	if err := db.Migrate(migrationsPath); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Dedup store: Redis survives restarts, memory is for local runs.
	var dedupStore dedup.Store
	if cfg.Redis.Enabled {
		redisStore := dedup.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.DedupTTL)
		if err := redisStore.Ping(ctx); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisStore.Close()
		dedupStore = redisStore
	} else {
		log.Warn("redis disabled, using in-memory dedup (articles replay on restart)")
		dedupStore = dedup.NewMemoryStore()
	}

	// Ticker resolution
	dict, err := ticker.LoadDictionary(cfg.Pipeline.DataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load ticker dictionary")
	}
	universe := ticker.NewUniverse(dict,
		ticker.WithSource(ticker.FetchNasdaqListed(&http.Client{Timeout: 30 * time.Second}), 24*time.Hour),
		ticker.WithLogger(log),
	)
	resolver := ticker.NewResolver(dict, universe, log)

	// Impact scoring
	scorerPath := ""
	if cfg.Pipeline.DataDir != "" {
		scorerPath = filepath.Join(cfg.Pipeline.DataDir, "keywords.yaml")
	}
	scorer, err := scoring.NewScorer(scorerPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load scoring tables")
	}

	// Market data: paid feeds first, free end-of-day data last.
	gateway := marketdata.NewGateway(log)
	if cfg.Providers.FinnhubAPIKey != "" {
		gateway.Register(marketdata.NewFinnhubProvider(cfg.Providers.FinnhubAPIKey, cfg.Providers.FinnhubRateDelay), 1)
	}
	if cfg.Providers.PolygonAPIKey != "" {
		gateway.Register(marketdata.NewPolygonProvider(cfg.Providers.PolygonAPIKey, cfg.Providers.PolygonRateDelay), 2)
	}
	gateway.Register(marketdata.NewStooqProvider(stooqRateDelay), 3)
	snapshots := marketdata.NewSnapshotCache(gateway, cfg.Providers.SnapshotCacheTTL, nil)

	validator := validation.New(cfg.Validation.MinGapPct, cfg.Validation.MinVolSpike)

	var engine *signals.Engine
	if cfg.Signals.Enabled {
		engine = signals.NewEngine(signals.Config{
			MinConfidence: cfg.Signals.MinConfidence,
			MaxRiskPct:    cfg.Signals.MaxRiskPct,
			MinRiskReward: cfg.Signals.MinRiskReward,
		}, log)
	}

	var notifier pipeline.Notifier
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, notify.Options{
			Silent:     cfg.Telegram.Silent,
			Retries:    cfg.Telegram.RetryAttempts,
			RetryDelay: cfg.Telegram.RetryDelay,
		})
	} else {
		notifier = notify.NewConsoleNotifier(log)
	}

	var publisher pipeline.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.SignalsTopic)
		defer producer.Close()
		publisher = producer
	}

	collectors := []collector.Collector{
		collector.NewRSSCollector("GlobeNewswire", "https://www.globenewswire.com/RssFeed/orgclass/1/feedTitle/GlobeNewswire"),
		collector.NewRSSCollector("PR Newswire", "https://www.prnewswire.com/rss/news-releases-list.rss"),
		collector.NewRSSCollector("Business Wire", "https://feed.businesswire.com/rss/home/?rss=G1QFDERJXkJeEFpRXEUcQ1xcIQ=="),
		collector.NewSECCollector([]string{"8-K"}, os.Getenv("SEC_USER_AGENT")),
	}

	p := pipeline.New(
		pipeline.Config{
			MinImpactScore: cfg.Pipeline.MinImpactScore,
			MaxIterations:  cfg.Pipeline.MaxIterations,
		},
		pipeline.Deps{
			Collectors: collectors,
			Dedup:      dedupStore,
			Scorer:     scorer,
			Resolver:   resolver,
			Snapshots:  snapshots,
			Profiles:   gateway,
			Validator:  validator,
			Engine:     engine,
			Store:      db,
			Publisher:  publisher,
			Notifier:   notifier,
		},
		log,
	)

	// Optional news intake from Kafka, alongside the polled feeds.
	if cfg.Kafka.Enabled && cfg.Kafka.NewsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.NewsTopic, cfg.Kafka.ConsumerGroup, p.ProcessItem, log)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.WithError(err).Error("news intake consumer stopped")
			}
		}()
	}

	// Read-only observability API.
	if cfg.Server.Enabled {
		handler := api.NewHandler(db, gateway)
		server := &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: api.SetupRoutes(handler),
		}
		go func() {
			log.WithField("addr", server.Addr).Info("http server listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	log.WithFields(logrus.Fields{
		"poll_interval":    cfg.Pipeline.PollInterval.String(),
		"min_impact_score": cfg.Pipeline.MinImpactScore,
		"signals_enabled":  cfg.Signals.Enabled,
		"universe_size":    universe.Size(),
	}).Info("pipeline configured")

	p.Run(ctx, cfg.Pipeline.PollInterval)
	gateway.LogStats()
	log.Info("market radar stopped")
}
