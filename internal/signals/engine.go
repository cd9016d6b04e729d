package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/market-radar/internal/models"
)

const (
	maxImpactPoints = 30
	entryBufferPct  = 0.005
)

// Config tunes the engine's acceptance thresholds. Defaults are permissive
// so the engine still works on partial pre-/after-hours data.
type Config struct {
	MinConfidence float64
	MaxRiskPct    float64
	MinRiskReward float64

	// Credits substituted for the volume contribution when volume data is
	// absent (pre-/after-hours). Zero falls back to the defaults.
	AbsentVolHighImpactCredit float64 // impact >= 80
	AbsentVolMedImpactCredit  float64 // impact >= 60
}

// Opportunity carries everything the engine needs to judge one news event:
// the market snapshot fields plus the news context. Pointer fields are
// unknown when nil and are never defaulted.
type Opportunity struct {
	Ticker            string
	CurrentPrice      float64
	PrevClose         *float64
	HighToday         *float64
	LowToday          *float64
	Volume            *float64
	AvgVolume         *float64
	FloatShares       *float64
	OutstandingShares *float64
	Headline          string
	NewsSource        string
	NewsTime          *time.Time
	ImpactScore       int
}

// Engine turns validated news plus market data into trading signals.
type Engine struct {
	cfg Config
	log *logrus.Logger
	now func() time.Time
}

func NewEngine(cfg Config, log *logrus.Logger) *Engine {
	if cfg.AbsentVolHighImpactCredit == 0 {
		cfg.AbsentVolHighImpactCredit = 15
	}
	if cfg.AbsentVolMedImpactCredit == 0 {
		cfg.AbsentVolMedImpactCredit = 10
	}
	return &Engine{cfg: cfg, log: log, now: time.Now}
}

// AnalyzeOpportunity scores the opportunity and, when confidence and
// risk/reward clear the configured thresholds, returns a fully-populated
// signal. A nil return means "no trade here", not an error.
func (e *Engine) AnalyzeOpportunity(opp Opportunity) *models.TradingSignal {
	if opp.Ticker == "" || opp.CurrentPrice <= 0 {
		return nil
	}

	var gapPct *float64
	if opp.PrevClose != nil && *opp.PrevClose > 0 {
		g := (opp.CurrentPrice - *opp.PrevClose) / *opp.PrevClose * 100
		gapPct = &g
	}

	var volSpike *float64
	if opp.Volume != nil && opp.AvgVolume != nil && *opp.AvgVolume > 0 {
		v := *opp.Volume / *opp.AvgVolume
		volSpike = &v
	}

	var floatPct *float64
	if opp.FloatShares != nil && opp.OutstandingShares != nil && *opp.OutstandingShares > 0 {
		f := *opp.FloatShares / *opp.OutstandingShares * 100
		floatPct = &f
	}

	confidence := 0.0
	signalType := models.SignalTypeBuy
	strategy := models.StrategyNews

	// News impact: up to 30 points, linear in impact score.
	impactPoints := float64(opp.ImpactScore) * 0.3
	if impactPoints > maxImpactPoints {
		impactPoints = maxImpactPoints
	}
	confidence += impactPoints

	// Volume spike tiers. When volume data is entirely absent (pre- or
	// after-hours) a smaller impact-driven credit substitutes for it.
	switch {
	case volSpike != nil && *volSpike >= 5:
		confidence += 25
	case volSpike != nil && *volSpike >= 3:
		confidence += 20
	case volSpike != nil && *volSpike >= 2:
		confidence += 15
	case volSpike != nil && *volSpike >= 1.5:
		confidence += 10
	case volSpike == nil && opp.ImpactScore >= 80:
		confidence += e.cfg.AbsentVolHighImpactCredit
	case volSpike == nil && opp.ImpactScore >= 60:
		confidence += e.cfg.AbsentVolMedImpactCredit
	}

	// Gap tiers by magnitude; the sign picks the direction and strategy.
	if gapPct != nil {
		mag := math.Abs(*gapPct)
		switch {
		case mag >= 20:
			confidence += 20
		case mag >= 10:
			confidence += 15
		case mag >= 5:
			confidence += 10
		case mag >= 3:
			confidence += 8
		case mag >= 1:
			confidence += 5
		}
		if *gapPct > 0 {
			signalType = models.SignalTypeBuy
			if *gapPct > 10 {
				strategy = models.StrategyBreakout
			} else {
				strategy = models.StrategyMomentum
			}
		} else if *gapPct < 0 {
			signalType = models.SignalTypeSell
			strategy = models.StrategyReversal
		}
	}

	// Float scarcity: lower float, higher volatility potential.
	if floatPct != nil {
		switch {
		case *floatPct <= 5:
			confidence += 15
		case *floatPct <= 10:
			confidence += 12
		case *floatPct <= 20:
			confidence += 8
		case *floatPct <= 30:
			confidence += 5
		}
	}

	// Position in today's range.
	if opp.HighToday != nil && opp.LowToday != nil && *opp.HighToday > *opp.LowToday {
		position := (opp.CurrentPrice - *opp.LowToday) / (*opp.HighToday - *opp.LowToday)
		switch {
		case position >= 0.8:
			confidence += 10
		case position <= 0.2:
			confidence += 8
		default:
			confidence += 5
		}
	}

	if confidence > 100 {
		confidence = 100
	}
	if confidence < e.cfg.MinConfidence {
		return nil
	}

	entry, stop := e.levels(signalType, strategy, opp.CurrentPrice, opp.PrevClose)
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return nil
	}

	dir := 1.0
	if signalType == models.SignalTypeSell {
		dir = -1.0
	}
	tp1 := entry + dir*risk*2
	tp2 := entry + dir*risk*3
	tp3 := entry + dir*risk*4

	reward := math.Abs(tp1 - entry)
	rr := reward / risk
	if rr < e.cfg.MinRiskReward {
		return nil
	}

	sig := &models.TradingSignal{
		Ticker:           opp.Ticker,
		SignalType:       signalType,
		Confidence:       confidence,
		CurrentPrice:     opp.CurrentPrice,
		EntryPrice:       entry,
		StopLoss:         stop,
		TakeProfit1:      tp1,
		TakeProfit2:      tp2,
		TakeProfit3:      tp3,
		VolumeSpikeRatio: volSpike,
		FloatPercentage:  floatPct,
		HighToday:        opp.HighToday,
		LowToday:         opp.LowToday,
		PriceChangePct:   gapPct,
		GapPct:           gapPct,
		RiskRewardRatio:  rr,
		RiskAmountPct:    risk / entry * 100,
		RewardAmountPct:  reward / entry * 100,
		Headline:         opp.Headline,
		NewsSource:       opp.NewsSource,
		NewsTime:         opp.NewsTime,
		ImpactScore:      opp.ImpactScore,
		GeneratedAt:      e.now(),
		Timeframe:        timeframeFor(strategy),
		Strategy:         strategy,
	}
	if opp.Volume != nil {
		v := int64(*opp.Volume)
		sig.Volume = &v
	}
	if opp.AvgVolume != nil {
		v := int64(*opp.AvgVolume)
		sig.AvgVolume = &v
	}

	if e.log != nil {
		e.log.WithFields(logrus.Fields{
			"ticker":     sig.Ticker,
			"type":       sig.SignalType,
			"confidence": sig.Confidence,
			"strategy":   sig.Strategy,
			"entry":      sig.EntryPrice,
			"stop":       sig.StopLoss,
			"rr":         sig.RiskRewardRatio,
		}).Info("signal generated")
	}
	return sig
}

// levels computes the entry and stop for the classified strategy. The entry
// sits 0.5% beyond the current price in the trade direction as a
// confirmation buffer; SELL levels mirror BUY.
func (e *Engine) levels(signalType, strategy string, current float64, prevClose *float64) (entry, stop float64) {
	if signalType == models.SignalTypeSell {
		entry = current * (1 - entryBufferPct)
		switch strategy {
		case models.StrategyBreakout:
			if prevClose != nil && *prevClose > 0 {
				stop = *prevClose * 1.02
			} else {
				stop = current * 1.05
			}
		case models.StrategyMomentum:
			stop = current * 1.03
		default:
			stop = current * 1.04
		}
		return entry, stop
	}

	entry = current * (1 + entryBufferPct)
	switch strategy {
	case models.StrategyBreakout:
		if prevClose != nil && *prevClose > 0 {
			stop = *prevClose * 0.98
		} else {
			stop = current * 0.95
		}
	case models.StrategyMomentum:
		stop = current * 0.97
	default:
		stop = current * 0.96
	}
	return entry, stop
}

func timeframeFor(strategy string) string {
	switch strategy {
	case models.StrategyBreakout, models.StrategyMomentum:
		return models.TimeframeIntraday
	case models.StrategyReversal:
		return models.TimeframeSwing
	default:
		return models.TimeframeSwing
	}
}

// ValidateSignal re-checks the stored fields of a signal against the
// configured thresholds. It derives nothing; a signal built anywhere else
// passes through the same acceptance rule before notification.
func (e *Engine) ValidateSignal(sig *models.TradingSignal) (bool, string) {
	if sig == nil {
		return false, "nil signal"
	}
	if sig.Confidence < e.cfg.MinConfidence {
		return false, fmt.Sprintf("confidence %.1f below minimum %.1f", sig.Confidence, e.cfg.MinConfidence)
	}
	if sig.RiskRewardRatio < e.cfg.MinRiskReward {
		return false, fmt.Sprintf("risk/reward %.2f below minimum %.2f", sig.RiskRewardRatio, e.cfg.MinRiskReward)
	}
	if sig.RiskAmountPct > e.cfg.MaxRiskPct {
		return false, fmt.Sprintf("risk %.1f%% above maximum %.1f%%", sig.RiskAmountPct, e.cfg.MaxRiskPct)
	}

	switch sig.SignalType {
	case models.SignalTypeBuy:
		if !(sig.StopLoss < sig.EntryPrice &&
			sig.EntryPrice < sig.TakeProfit1 &&
			sig.TakeProfit1 <= sig.TakeProfit2 &&
			sig.TakeProfit2 <= sig.TakeProfit3) {
			return false, "BUY levels out of order"
		}
	case models.SignalTypeSell:
		if !(sig.StopLoss > sig.EntryPrice &&
			sig.EntryPrice > sig.TakeProfit1 &&
			sig.TakeProfit1 >= sig.TakeProfit2 &&
			sig.TakeProfit2 >= sig.TakeProfit3) {
			return false, "SELL levels out of order"
		}
	default:
		return false, fmt.Sprintf("unknown signal type %q", sig.SignalType)
	}

	return true, "ok"
}
