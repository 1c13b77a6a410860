package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideBuyFusion(t *testing.T) {
	stats := batchStats{expectedReturn: 0.10, profitProb: 0.70, lossProb: 0.05}
	sig := decide(stats, 0.30, 0.35, 0.10, 1000)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.InDelta(t, 0.10*0.70*0.35/0.15, sig.BuyStrength, 1e-12)
	assert.InDelta(t, 0.1633, sig.BuyStrength, 1e-3)
	assert.Equal(t, 0.0, sig.SellStrength)
	assert.Equal(t, 1.0, sig.Confidence)
}

func TestDecideBuyTakesPriorityOverSell(t *testing.T) {
	// putSignal alone would satisfy the sell gate; buy is checked first.
	stats := batchStats{expectedReturn: 0.10, profitProb: 0.70, lossProb: 0.10}
	sig := decide(stats, 0.30, 0.35, 0.45, 1000)
	assert.Equal(t, ActionBuy, sig.Action)
}

func TestDecideSellFusion(t *testing.T) {
	t.Run("negative expected return", func(t *testing.T) {
		stats := batchStats{expectedReturn: -0.06, profitProb: 0.10, lossProb: 0.55}
		sig := decide(stats, 0.30, 0.10, 0.20, 1000)
		assert.Equal(t, ActionSell, sig.Action)
		assert.InDelta(t, math.Abs(-0.06)*0.55*0.20/0.15, sig.SellStrength, 1e-12)
		assert.Equal(t, 0.0, sig.BuyStrength)
	})
	t.Run("high volatility alone", func(t *testing.T) {
		stats := batchStats{expectedReturn: 0.01, profitProb: 0.30, lossProb: 0.30}
		sig := decide(stats, 0.65, 0.10, 0.20, 1000)
		assert.Equal(t, ActionSell, sig.Action)
	})
	t.Run("loss probability alone", func(t *testing.T) {
		stats := batchStats{expectedReturn: 0.01, profitProb: 0.10, lossProb: 0.61}
		sig := decide(stats, 0.30, 0.10, 0.20, 1000)
		assert.Equal(t, ActionSell, sig.Action)
	})
}

func TestDecideHold(t *testing.T) {
	stats := batchStats{expectedReturn: 0.02, profitProb: 0.40, lossProb: 0.30}
	sig := decide(stats, 0.30, 0.20, 0.20, 1000)
	assert.Equal(t, ActionHold, sig.Action)
	assert.Equal(t, 0.0, sig.BuyStrength)
	assert.Equal(t, 0.0, sig.SellStrength)
	assert.Equal(t, 1.0, sig.Confidence)
}

func TestDecideConfidenceSaturation(t *testing.T) {
	stats := batchStats{}
	assert.Equal(t, 0.5, decide(stats, 0.3, 0, 0, 500).Confidence)
	assert.Equal(t, 1.0, decide(stats, 0.3, 0, 0, 1000).Confidence)
	// adequacy proxy saturates regardless of dispersion
	assert.Equal(t, 1.0, decide(stats, 0.3, 0, 0, 5000).Confidence)
}

func TestDecideStrengthClamped(t *testing.T) {
	stats := batchStats{expectedReturn: 0.90, profitProb: 0.99, lossProb: 0}
	sig := decide(stats, 0.30, 0.90, 0.10, 1000)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.Equal(t, 1.0, sig.BuyStrength)
}

func TestGenerateHoldsWithoutHistory(t *testing.T) {
	sim := NewPathSimulator(1, 1)
	gen := NewSignalGenerator(sim, 0.02, 1000)
	prices := make([]float64, minBarsForSignal-1)
	sig := gen.Generate(100, prices, nil, 0.2)
	assert.Equal(t, Signal{}, sig)
}

func TestAnnualizedDrift(t *testing.T) {
	t.Run("too few returns", func(t *testing.T) {
		assert.Equal(t, 0.0, annualizedDrift(make([]float64, driftWindow-1)))
	})
	t.Run("uses last window", func(t *testing.T) {
		returns := make([]float64, 40)
		for i := range returns {
			returns[i] = -1 // stale values must not leak in
		}
		for i := 40 - driftWindow; i < 40; i++ {
			returns[i] = 0.001
		}
		assert.InDelta(t, 0.001*tradingDaysPerYear, annualizedDrift(returns), 1e-12)
	})
}

func TestSummarize(t *testing.T) {
	spot := 100.0
	batch := []float64{110, 108, 104, 96, 92, 90} // 2 above 105, 2 below 95, 2 inside the band
	stats := summarize(spot, batch)
	assert.InDelta(t, 2.0/6.0, stats.profitProb, 1e-12)
	assert.InDelta(t, 2.0/6.0, stats.lossProb, 1e-12)
	mean := (110.0 + 108 + 104 + 96 + 92 + 90) / 6
	assert.InDelta(t, (mean-spot)/spot, stats.expectedReturn, 1e-12)
}

func TestActionLegacyInt(t *testing.T) {
	assert.Equal(t, 1, ActionBuy.LegacyInt())
	assert.Equal(t, -1, ActionSell.LegacyInt())
	assert.Equal(t, 0, ActionHold.LegacyInt())
	assert.Equal(t, "buy", ActionBuy.String())
	assert.Equal(t, "hold", Action(99).String())
}
