package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionLongStopLossBoundary(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(400, 100)
	closed := m.OnPrice(380) // exactly -5%
	assert.True(t, closed)
	assert.True(t, m.ShouldClose(), "close latched for callers polling after the bar")
	assert.False(t, m.IsOpen())
}

func TestPositionLongTakeProfitBoundary(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(400, 100)
	closed := m.OnPrice(460) // exactly +15%
	assert.True(t, closed)
	assert.True(t, m.ShouldClose())
}

func TestPositionLongInsideBand(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(400, 100)
	assert.False(t, m.OnPrice(410))
	assert.True(t, m.IsOpen())
	assert.False(t, m.ShouldClose())
	assert.Equal(t, 1000.0, m.UnrealizedPnL()) // (410-400)*100
	state := m.State()
	assert.InDelta(t, 0.025, state.PnLPercent, 1e-12)
}

func TestPositionShortDirectionalRule(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(100, -10)
	assert.False(t, m.OnPrice(96), "+4% move stays open")
	// pnlPercent >= stopLossPercent closes the short even though the move is
	// a gain; the rule is preserved as the legacy algorithm defines it.
	m.Open(100, -10)
	assert.True(t, m.OnPrice(95))
}

// A short losing more than the stop distance (price rising) does not trip
// the directional auto-close, but the direction-agnostic ShouldClose flags
// it. The divergence is intentional and kept; this test pins it.
func TestPositionShortLossRuleDivergence(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(100, -10)
	closed := m.OnPrice(106) // pnlPercent = -0.06
	assert.False(t, closed, "directional rule leaves the short open")
	assert.True(t, m.IsOpen())
	assert.True(t, m.ShouldClose(), "agnostic |pnl| check flags the close")
}

func TestPositionOpenReplacesAndReset(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(100, 10)
	m.OnPrice(101)
	m.Open(200, -5)
	state := m.State()
	assert.Equal(t, 200.0, state.EntryPrice)
	assert.False(t, state.IsLong)
	assert.Equal(t, 0.0, state.PnL)

	m.Reset()
	assert.False(t, m.IsOpen())
	assert.False(t, m.ShouldClose())
}

func TestPositionFlatIsNoOp(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	assert.False(t, m.OnPrice(123))
	assert.False(t, m.ShouldClose())
	assert.Equal(t, 0.0, m.UnrealizedPnL())
}

func TestPositionLatchClearsOnNextBar(t *testing.T) {
	m := NewPositionMonitor(0.05, 0.15)
	m.Open(400, 100)
	assert.True(t, m.OnPrice(380))
	assert.True(t, m.ShouldClose())
	assert.False(t, m.OnPrice(381))
	assert.False(t, m.ShouldClose(), "flat monitor reports no close once the next bar lands")
}
