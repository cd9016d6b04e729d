package models

import "time"

// Signal type constants
const (
	SignalTypeBuy  = "BUY"
	SignalTypeSell = "SELL"
)

// Strategy constants
const (
	StrategyBreakout = "breakout"
	StrategyMomentum = "momentum"
	StrategyReversal = "reversal"
	StrategyNews     = "news"
)

// Timeframe constants
const (
	TimeframeIntraday = "intraday"
	TimeframeSwing    = "swing"
	TimeframePosition = "position"
)

// TradingSignal is an immutable decision record: a confidence-scored trade
// idea with entry/stop/target levels and the news context that produced it.
type TradingSignal struct {
	Ticker     string  `json:"ticker"`
	SignalType string  `json:"signal_type"`
	Confidence float64 `json:"confidence"`

	// Price levels
	CurrentPrice float64 `json:"current_price"`
	EntryPrice   float64 `json:"entry_price"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit1  float64 `json:"take_profit_1"`
	TakeProfit2  float64 `json:"take_profit_2"`
	TakeProfit3  float64 `json:"take_profit_3"`

	// Volume / float context
	Volume           *int64   `json:"volume,omitempty"`
	AvgVolume        *int64   `json:"avg_volume,omitempty"`
	VolumeSpikeRatio *float64 `json:"volume_spike_ratio,omitempty"`
	FloatPercentage  *float64 `json:"float_percentage,omitempty"`
	HighToday        *float64 `json:"high_today,omitempty"`
	LowToday         *float64 `json:"low_today,omitempty"`

	// Price movement
	PriceChangePct *float64 `json:"price_change_pct,omitempty"`
	GapPct         *float64 `json:"gap_pct,omitempty"`

	// Risk metrics
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
	RiskAmountPct   float64 `json:"risk_amount_pct"`
	RewardAmountPct float64 `json:"reward_amount_pct"`

	// News context
	Headline    string     `json:"headline,omitempty"`
	NewsSource  string     `json:"news_source,omitempty"`
	NewsTime    *time.Time `json:"news_time,omitempty"`
	ImpactScore int        `json:"impact_score"`

	// Metadata
	GeneratedAt time.Time `json:"generated_at"`
	Timeframe   string    `json:"timeframe"`
	Strategy    string    `json:"strategy"`
}
