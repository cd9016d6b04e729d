package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/market-radar/internal/models"
)

// Event types published by the pipeline
const (
	EventNewsValidated   = "NEWS_VALIDATED"
	EventSignalGenerated = "SIGNAL_GENERATED"
)

// Producer publishes pipeline events to Kafka, validated news and generated
// signals each on their own topic.
type Producer struct {
	eventsWriter  *kafka.Writer
	signalsWriter *kafka.Writer
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, eventsTopic, signalsTopic string) *Producer {
	return &Producer{
		eventsWriter:  newWriter(brokers, eventsTopic),
		signalsWriter: newWriter(brokers, signalsTopic),
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
}

// PublishNewsValidated publishes a market-confirmed news event
func (p *Producer) PublishNewsValidated(ctx context.Context, item *models.NewsItem) error {
	event := models.NewsEvent{
		EventType: EventNewsValidated,
		Item:      item,
		Ticker:    item.Ticker,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, p.eventsWriter, item.Ticker, event)
}

// PublishSignalGenerated publishes a generated trading signal
func (p *Producer) PublishSignalGenerated(ctx context.Context, signal *models.TradingSignal) error {
	event := models.NewsEvent{
		EventType: EventSignalGenerated,
		Signal:    signal,
		Ticker:    signal.Ticker,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, p.signalsWriter, signal.Ticker, event)
}

func (p *Producer) publish(ctx context.Context, writer *kafka.Writer, key string, event models.NewsEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if err := p.eventsWriter.Close(); err != nil {
		p.signalsWriter.Close()
		return err
	}
	return p.signalsWriter.Close()
}
