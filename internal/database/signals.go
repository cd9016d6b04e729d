package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/market-radar/internal/models"
)

// SaveTradingSignal inserts a generated signal and fills in the assigned ID.
// Price levels go through decimal so NUMERIC columns round-trip exactly.
func (db *DB) SaveTradingSignal(s *models.TradingSignal) (int, error) {
	query := `
		INSERT INTO trading_signals (
			ticker, signal_type, confidence,
			current_price, entry_price, stop_loss,
			take_profit_1, take_profit_2, take_profit_3,
			volume, avg_volume, volume_spike_ratio, float_percentage, gap_pct,
			risk_reward_ratio, risk_amount_pct, reward_amount_pct,
			headline, news_source, news_time, impact_score,
			strategy, timeframe, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		          $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`
	var id int
	err := db.conn.QueryRow(query,
		s.Ticker, s.SignalType, decimal.NewFromFloat(s.Confidence),
		decimal.NewFromFloat(s.CurrentPrice), decimal.NewFromFloat(s.EntryPrice), decimal.NewFromFloat(s.StopLoss),
		decimal.NewFromFloat(s.TakeProfit1), decimal.NewFromFloat(s.TakeProfit2), decimal.NewFromFloat(s.TakeProfit3),
		nullInt(s.Volume), nullInt(s.AvgVolume), nullFloat(s.VolumeSpikeRatio), nullFloat(s.FloatPercentage), nullFloat(s.GapPct),
		decimal.NewFromFloat(s.RiskRewardRatio), decimal.NewFromFloat(s.RiskAmountPct), decimal.NewFromFloat(s.RewardAmountPct),
		nullString(s.Headline), nullString(s.NewsSource), nullTime(s.NewsTime), s.ImpactScore,
		s.Strategy, s.Timeframe, s.GeneratedAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to save trading signal: %w", err)
	}
	return id, nil
}

// GetRecentTradingSignals retrieves the most recent signals, newest first
func (db *DB) GetRecentTradingSignals(limit int) ([]*models.TradingSignal, error) {
	query := `
		SELECT ticker, signal_type, confidence,
		       current_price, entry_price, stop_loss,
		       take_profit_1, take_profit_2, take_profit_3,
		       volume, avg_volume, volume_spike_ratio, float_percentage, gap_pct,
		       risk_reward_ratio, risk_amount_pct, reward_amount_pct,
		       headline, news_source, news_time, impact_score,
		       strategy, timeframe, generated_at
		FROM trading_signals
		ORDER BY generated_at DESC
		LIMIT $1
	`
	return db.scanTradingSignals(db.conn.Query(query, limit))
}

// GetTradingSignalsByTicker retrieves recent signals for one ticker
func (db *DB) GetTradingSignalsByTicker(ticker string, limit int) ([]*models.TradingSignal, error) {
	query := `
		SELECT ticker, signal_type, confidence,
		       current_price, entry_price, stop_loss,
		       take_profit_1, take_profit_2, take_profit_3,
		       volume, avg_volume, volume_spike_ratio, float_percentage, gap_pct,
		       risk_reward_ratio, risk_amount_pct, reward_amount_pct,
		       headline, news_source, news_time, impact_score,
		       strategy, timeframe, generated_at
		FROM trading_signals
		WHERE ticker = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`
	return db.scanTradingSignals(db.conn.Query(query, ticker, limit))
}

func (db *DB) scanTradingSignals(rows *sql.Rows, err error) ([]*models.TradingSignal, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query trading signals: %w", err)
	}
	defer rows.Close()

	var signals []*models.TradingSignal
	for rows.Next() {
		s, err := scanTradingSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trading signal: %w", err)
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

func scanTradingSignal(row rowScanner) (*models.TradingSignal, error) {
	var s models.TradingSignal
	var confidence, currentPrice, entryPrice, stopLoss sql.NullString
	var tp1, tp2, tp3, rr, riskPct, rewardPct sql.NullString
	var volume, avgVolume sql.NullInt64
	var volSpike, floatPct, gapPct sql.NullFloat64
	var headline, newsSource sql.NullString
	var newsTime sql.NullTime

	err := row.Scan(
		&s.Ticker, &s.SignalType, &confidence,
		&currentPrice, &entryPrice, &stopLoss,
		&tp1, &tp2, &tp3,
		&volume, &avgVolume, &volSpike, &floatPct, &gapPct,
		&rr, &riskPct, &rewardPct,
		&headline, &newsSource, &newsTime, &s.ImpactScore,
		&s.Strategy, &s.Timeframe, &s.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Confidence = decimalFloat(confidence)
	s.CurrentPrice = decimalFloat(currentPrice)
	s.EntryPrice = decimalFloat(entryPrice)
	s.StopLoss = decimalFloat(stopLoss)
	s.TakeProfit1 = decimalFloat(tp1)
	s.TakeProfit2 = decimalFloat(tp2)
	s.TakeProfit3 = decimalFloat(tp3)
	s.RiskRewardRatio = decimalFloat(rr)
	s.RiskAmountPct = decimalFloat(riskPct)
	s.RewardAmountPct = decimalFloat(rewardPct)

	if volume.Valid {
		s.Volume = &volume.Int64
	}
	if avgVolume.Valid {
		s.AvgVolume = &avgVolume.Int64
	}
	if volSpike.Valid {
		s.VolumeSpikeRatio = &volSpike.Float64
	}
	if floatPct.Valid {
		s.FloatPercentage = &floatPct.Float64
	}
	if gapPct.Valid {
		s.GapPct = &gapPct.Float64
		s.PriceChangePct = &gapPct.Float64
	}
	if headline.Valid {
		s.Headline = headline.String
	}
	if newsSource.Valid {
		s.NewsSource = newsSource.String
	}
	if newsTime.Valid {
		s.NewsTime = &newsTime.Time
	}

	return &s, nil
}

func decimalFloat(ns sql.NullString) float64 {
	if !ns.Valid {
		return 0
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
