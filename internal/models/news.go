package models

import "time"

// NewsItem represents a single ingested news article, enriched progressively
// as it moves through the pipeline. Every terminal NewsItem is persisted,
// including low-scoring and unvalidated ones, so rejections stay auditable.
type NewsItem struct {
	UID       string `json:"uid"`
	Source    string `json:"source"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
	Summary   string `json:"summary,omitempty"`

	// Enrichment
	Ticker       string `json:"ticker,omitempty"`
	ImpactScore  int    `json:"impact_score"`
	ImpactReason string `json:"impact_reason,omitempty"`

	// Validation outcome. GapPct and VolSpike stay nil when their inputs
	// were unavailable; zero is a real computed value, not a placeholder.
	GapPct           *float64 `json:"gap_pct,omitempty"`
	VolSpike         *float64 `json:"vol_spike,omitempty"`
	Validated        bool     `json:"validated"`
	ValidationReason string   `json:"validation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NewsEvent represents a Kafka event for pipeline outcomes
type NewsEvent struct {
	EventType string          `json:"event_type"`
	Item      *NewsItem       `json:"item,omitempty"`
	Signal    *TradingSignal  `json:"signal,omitempty"`
	Ticker    string          `json:"ticker,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
