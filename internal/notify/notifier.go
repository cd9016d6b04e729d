package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/market-radar/internal/models"
)

// Notifier delivers pipeline outcomes to a human.
type Notifier interface {
	NotifyNews(ctx context.Context, item *models.NewsItem) error
	NotifySignal(ctx context.Context, signal *models.TradingSignal) error
}

// ConsoleNotifier writes notifications to the structured log. Used when no
// Telegram credentials are configured.
type ConsoleNotifier struct {
	log *logrus.Logger
}

func NewConsoleNotifier(log *logrus.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (n *ConsoleNotifier) NotifyNews(_ context.Context, item *models.NewsItem) error {
	n.log.WithFields(logrus.Fields{
		"ticker":       item.Ticker,
		"impact_score": item.ImpactScore,
		"source":       item.Source,
		"reason":       item.ValidationReason,
	}).Info("validated news: " + item.Title)
	return nil
}

func (n *ConsoleNotifier) NotifySignal(_ context.Context, signal *models.TradingSignal) error {
	n.log.WithFields(logrus.Fields{
		"ticker":     signal.Ticker,
		"type":       signal.SignalType,
		"confidence": signal.Confidence,
		"entry":      signal.EntryPrice,
		"stop":       signal.StopLoss,
		"strategy":   signal.Strategy,
	}).Info("trading signal")
	return nil
}
