package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/market-radar/internal/models"
)

func sampleSignal(ticker string) *models.TradingSignal {
	volume := int64(74000)
	avgVolume := int64(10000)
	spike := 7.4
	gap := 3.78
	newsTime := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
	return &models.TradingSignal{
		Ticker:           ticker,
		SignalType:       models.SignalTypeBuy,
		Confidence:       65.5,
		CurrentPrice:     7.69,
		EntryPrice:       7.7275,
		StopLoss:         7.4593,
		TakeProfit1:      8.2639,
		TakeProfit2:      8.5321,
		TakeProfit3:      8.8003,
		Volume:           &volume,
		AvgVolume:        &avgVolume,
		VolumeSpikeRatio: &spike,
		GapPct:           &gap,
		RiskRewardRatio:  2.0,
		RiskAmountPct:    3.47,
		RewardAmountPct:  6.94,
		Headline:         "Locafy announces major partnership",
		NewsSource:       "GlobeNewswire",
		NewsTime:         &newsTime,
		ImpactScore:      75,
		Strategy:         models.StrategyMomentum,
		Timeframe:        models.TimeframeIntraday,
		GeneratedAt:      time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
	}
}

func TestSaveTradingSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("round-trips all fields", func(t *testing.T) {
		testDB.TruncateAll(t)

		sig := sampleSignal("LCFY")
		id, err := testDB.SaveTradingSignal(sig)
		require.NoError(t, err)
		assert.Greater(t, id, 0)

		signals, err := testDB.GetRecentTradingSignals(10)
		require.NoError(t, err)
		require.Len(t, signals, 1)

		got := signals[0]
		assert.Equal(t, "LCFY", got.Ticker)
		assert.Equal(t, models.SignalTypeBuy, got.SignalType)
		assert.InDelta(t, 65.5, got.Confidence, 1e-9)
		assert.InDelta(t, 7.7275, got.EntryPrice, 1e-9)
		assert.InDelta(t, 7.4593, got.StopLoss, 1e-9)
		assert.InDelta(t, 2.0, got.RiskRewardRatio, 1e-9)
		require.NotNil(t, got.Volume)
		assert.Equal(t, int64(74000), *got.Volume)
		require.NotNil(t, got.VolumeSpikeRatio)
		assert.InDelta(t, 7.4, *got.VolumeSpikeRatio, 1e-9)
		require.NotNil(t, got.NewsTime)
		assert.Equal(t, models.StrategyMomentum, got.Strategy)
	})

	t.Run("optional fields persist as null", func(t *testing.T) {
		testDB.TruncateAll(t)

		sig := sampleSignal("BARE")
		sig.Volume = nil
		sig.AvgVolume = nil
		sig.VolumeSpikeRatio = nil
		sig.GapPct = nil
		sig.NewsTime = nil
		sig.Headline = ""
		_, err := testDB.SaveTradingSignal(sig)
		require.NoError(t, err)

		signals, err := testDB.GetTradingSignalsByTicker("BARE", 1)
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.Nil(t, signals[0].Volume)
		assert.Nil(t, signals[0].VolumeSpikeRatio)
		assert.Nil(t, signals[0].GapPct)
		assert.Nil(t, signals[0].NewsTime)
		assert.Empty(t, signals[0].Headline)
	})

	t.Run("ticker filter", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.SaveTradingSignal(sampleSignal("AAA"))
		require.NoError(t, err)
		_, err = testDB.SaveTradingSignal(sampleSignal("BBB"))
		require.NoError(t, err)

		signals, err := testDB.GetTradingSignalsByTicker("AAA", 10)
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.Equal(t, "AAA", signals[0].Ticker)
	})
}
