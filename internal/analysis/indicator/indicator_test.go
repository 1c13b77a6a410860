package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volcast/internal/market"
)

func candlesFromCloses(closes []float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			OpenTime: int64(i) * 60_000,
			Open:     c,
			High:     c * 1.01,
			Low:      c * 0.99,
			Close:    c,
			Volume:   1000,
		}
	}
	return out
}

func TestComputeEmptyWindow(t *testing.T) {
	_, err := Compute(nil, Settings{})
	assert.Error(t, err)
}

func TestComputeDefaults(t *testing.T) {
	closes := make([]float64, 80)
	price := 100.0
	for i := range closes {
		price *= math.Exp(0.003 * math.Sin(float64(i)/4))
		closes[i] = price
	}
	rep, err := Compute(candlesFromCloses(closes), Settings{})
	require.NoError(t, err)
	assert.Equal(t, 80, rep.Count)
	for _, key := range []string{"ema_fast", "ema_slow", "rsi", "atr"} {
		v, ok := rep.Values[key]
		assert.True(t, ok, key)
		assert.False(t, math.IsNaN(v.Latest), key)
	}
	rsi := rep.Values["rsi"].Latest
	assert.Greater(t, rsi, 0.0)
	assert.LessOrEqual(t, rsi, 100.0)
}

func TestComputeTrendStates(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i) // steady uptrend
	}
	rep, err := Compute(candlesFromCloses(closes), Settings{})
	require.NoError(t, err)
	assert.Equal(t, "above", rep.Values["ema_fast"].State)
	assert.Equal(t, "overbought", rep.Values["rsi"].State)
}
