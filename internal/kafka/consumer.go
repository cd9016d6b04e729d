package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/market-radar/internal/models"
)

// Event type accepted on the intake topic
const EventNewsIntake = "NEWS_INTAKE"

// IntakeHandler receives each article from the intake topic. Errors are
// logged and the consumer moves on; one bad article never stalls the topic.
type IntakeHandler func(ctx context.Context, item *models.NewsItem) error

// Consumer reads externally-sourced news articles from Kafka and hands them
// to the pipeline, so other systems can inject articles alongside the
// polled feeds.
type Consumer struct {
	reader  *kafka.Reader
	handler IntakeHandler
	log     *logrus.Logger
}

// NewConsumer creates a new Kafka consumer for the news intake topic
func NewConsumer(brokers []string, topic, groupID string, handler IntakeHandler, log *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:  reader,
		handler: handler,
		log:     log,
	}
}

// Start begins consuming messages until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.WithField("topic", c.reader.Config().Topic).Info("starting news intake consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info("news intake consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.log.WithError(err).Error("error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.WithError(err).WithFields(logrus.Fields{
					"partition": msg.Partition,
					"offset":    msg.Offset,
				}).Error("error processing message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.NewsEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal news event: %w", err)
	}

	if event.EventType != EventNewsIntake {
		c.log.WithField("event_type", event.EventType).Debug("ignoring event type")
		return nil
	}
	if event.Item == nil {
		return fmt.Errorf("intake event missing item")
	}
	if event.Item.Title == "" || event.Item.Link == "" {
		return fmt.Errorf("intake item missing title or link")
	}

	return c.handler(ctx, event.Item)
}
