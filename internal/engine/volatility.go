package engine

import "math"

const (
	tradingDaysPerYear = 252

	// fallbackVolatility is returned while fewer than minReturnSamples log
	// returns have accumulated. Thin samples are a normal state, not an error.
	fallbackVolatility = 0.20
	minReturnSamples   = 10
)

// VolatilityEstimator keeps rolling windows of closing prices and log
// returns, both bounded to the lookback period with oldest-first eviction.
type VolatilityEstimator struct {
	lookback int
	prices   []float64
	returns  []float64
}

func NewVolatilityEstimator(lookback int) *VolatilityEstimator {
	return &VolatilityEstimator{
		lookback: lookback,
		prices:   make([]float64, 0, lookback),
		returns:  make([]float64, 0, lookback),
	}
}

// Update appends price to the windows and returns the refreshed annualized
// volatility estimate.
func (e *VolatilityEstimator) Update(price float64) float64 {
	if n := len(e.prices); n > 0 {
		e.returns = appendBounded(e.returns, math.Log(price/e.prices[n-1]), e.lookback)
	}
	e.prices = appendBounded(e.prices, price, e.lookback)
	return e.Annualized()
}

// Annualized computes sqrt(sampleVariance * 252) over the return window.
// A constant price run legitimately drives this to zero.
func (e *VolatilityEstimator) Annualized() float64 {
	n := len(e.returns)
	if n < minReturnSamples {
		return fallbackVolatility
	}
	mean := 0.0
	for _, r := range e.returns {
		mean += r
	}
	mean /= float64(n)
	variance := 0.0
	for _, r := range e.returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(n - 1) // Bessel's correction
	return math.Sqrt(variance * tradingDaysPerYear)
}

// Resize changes the lookback bound, trimming the oldest observations when
// the windows already exceed it.
func (e *VolatilityEstimator) Resize(lookback int) {
	if lookback <= 0 || lookback == e.lookback {
		return
	}
	e.lookback = lookback
	if n := len(e.prices); n > lookback {
		e.prices = append(e.prices[:0], e.prices[n-lookback:]...)
	}
	if n := len(e.returns); n > lookback {
		e.returns = append(e.returns[:0], e.returns[n-lookback:]...)
	}
}

// SampleSize reports the number of prices currently in the window.
func (e *VolatilityEstimator) SampleSize() int { return len(e.prices) }

func appendBounded(window []float64, v float64, bound int) []float64 {
	window = append(window, v)
	if len(window) > bound {
		window = window[1:]
	}
	return window
}
