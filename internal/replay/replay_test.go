package replay

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volcast/internal/engine"
	"volcast/internal/market"
)

func testCandles(n int) []market.Candle {
	out := make([]market.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price *= math.Exp(0.004 + 0.008*math.Sin(float64(i)/5))
		ts := int64(i) * 60_000
		out[i] = market.Candle{
			OpenTime:  ts,
			CloseTime: ts + 59_999,
			Open:      price * 0.999,
			High:      price * 1.002,
			Low:       price * 0.998,
			Close:     price,
			Volume:    1000,
		}
	}
	return out
}

func TestResultStoreRoundTrip(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	run := Run{
		ID:            "run-1",
		Symbol:        "BTCUSDT",
		Timeframe:     "1h",
		Status:        RunStatusPending,
		Seed:          42,
		InitialEquity: 100_000,
		Request:       RunRequest{Symbol: "BTCUSDT", Timeframe: "1h", Seed: 42},
		CreatedAt:     time.Now(),
	}
	require.NoError(t, store.SaveRun(ctx, run))

	run.Status = RunStatusDone
	run.Stats = RunStats{FinalEquity: 101_200, Profit: 1200, Trades: 3, Wins: 2, Losses: 1}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusDone, got.Status)
	assert.Equal(t, uint64(42), got.Seed)
	assert.Equal(t, 3, got.Stats.Trades)
	assert.Equal(t, "BTCUSDT", got.Request.Symbol)

	require.NoError(t, store.InsertTrades(ctx, []Trade{
		{RunID: "run-1", EntryTS: 1, ExitTS: 2, EntryPrice: 100, ExitPrice: 105, Quantity: 10, Profit: 50, Reason: "signal"},
		{RunID: "run-1", EntryTS: 3, ExitTS: 4, EntryPrice: 105, ExitPrice: 101, Quantity: 10, Profit: -40, Reason: "risk"},
	}))
	trades, err := store.Trades(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "signal", trades[0].Reason)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestReplayerCompletesRun(t *testing.T) {
	dir := t.TempDir()
	candleStore, err := market.NewStore(dir + "/candles")
	require.NoError(t, err)
	defer candleStore.Close()
	resultStore, err := NewResultStore(dir + "/results")
	require.NoError(t, err)
	defer resultStore.Close()
	ctx := context.Background()

	candles := testCandles(90)
	_, err = candleStore.InsertCandles(ctx, "BTCUSDT", "1h", candles)
	require.NoError(t, err)

	settings := engine.DefaultSettings()
	settings.MonteCarloSims = 200
	settings.SimWorkers = 1
	rep, err := NewReplayer(ReplayerConfig{
		CandleStore:   candleStore,
		ResultStore:   resultStore,
		Settings:      settings,
		InitialEquity: 50_000,
		ChartDir:      dir + "/charts",
		MaxConcurrent: 1,
	})
	require.NoError(t, err)

	run, err := rep.Start(RunRequest{Symbol: "btcusdt", Timeframe: "1H", Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", run.Symbol)
	assert.Equal(t, "1h", run.Timeframe)

	var got Run
	require.Eventually(t, func() bool {
		got, err = resultStore.GetRun(ctx, run.ID)
		return err == nil && (got.Status == RunStatusDone || got.Status == RunStatusFailed)
	}, 30*time.Second, 100*time.Millisecond)
	require.Equal(t, RunStatusDone, got.Status, got.Message)
	assert.Equal(t, 90, got.Stats.Bars)
	assert.Greater(t, got.Stats.FinalEquity, 0.0)
}

func TestReplayerRejectsBadRequests(t *testing.T) {
	dir := t.TempDir()
	candleStore, err := market.NewStore(dir + "/candles")
	require.NoError(t, err)
	defer candleStore.Close()
	resultStore, err := NewResultStore(dir + "/results")
	require.NoError(t, err)
	defer resultStore.Close()

	rep, err := NewReplayer(ReplayerConfig{
		CandleStore:   candleStore,
		ResultStore:   resultStore,
		Settings:      engine.DefaultSettings(),
		InitialEquity: 10_000,
	})
	require.NoError(t, err)

	_, err = rep.Start(RunRequest{Timeframe: "1h"})
	assert.Error(t, err)
	_, err = rep.Start(RunRequest{Symbol: "BTCUSDT"})
	assert.Error(t, err)
}

func TestPaperAccountStats(t *testing.T) {
	a := newPaperAccount(10_000, 0.1, 0, 0)
	a.cash = 10_500
	a.wins = 2
	a.losses = 1
	a.booked = make([]Trade, 3)
	stats := a.stats(10_000, 120, []float64{10_000, 10_800, 10_200, 10_500})
	assert.Equal(t, 10_500.0, stats.FinalEquity)
	assert.Equal(t, 500.0, stats.Profit)
	assert.InDelta(t, 0.05, stats.ReturnPct, 1e-12)
	assert.InDelta(t, 2.0/3.0, stats.WinRate, 1e-12)
	assert.Equal(t, 10_800.0, stats.EquityPeak)
	assert.Equal(t, 10_000.0, stats.EquityValley)
	assert.InDelta(t, (10_800.0-10_200.0)/10_800.0, stats.MaxDrawdownPct, 1e-12)
}
