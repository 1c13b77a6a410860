package engine

import "math"

// PositionState is a read-only snapshot of the monitor.
type PositionState struct {
	Open       bool    `json:"open"`
	EntryPrice float64 `json:"entry_price"`
	Quantity   float64 `json:"quantity"`
	IsLong     bool    `json:"is_long"`
	PnL        float64 `json:"unrealized_pnl"`
	PnLPercent float64 `json:"unrealized_pnl_percent"`
}

// PositionMonitor tracks the single open position against fixed stop-loss
// and take-profit distances. The automatic close in OnPrice differentiates
// long and short; ShouldClose keeps the legacy direction-agnostic loss check.
// The two deliberately disagree for a short whose loss stays inside the
// directional rule (see the divergence test).
type PositionMonitor struct {
	stopLoss   float64
	takeProfit float64

	entryPrice float64
	quantity   float64
	isLong     bool
	pnl        float64
	pnlPercent float64

	// closeFired latches an automatic close until the next bar so a caller
	// polling after the bar still observes the close condition.
	closeFired bool
}

func NewPositionMonitor(stopLoss, takeProfit float64) *PositionMonitor {
	return &PositionMonitor{stopLoss: stopLoss, takeProfit: takeProfit}
}

func (m *PositionMonitor) SetThresholds(stopLoss, takeProfit float64) {
	m.stopLoss = stopLoss
	m.takeProfit = takeProfit
}

// Open records a position, replacing any existing one. A zero quantity
// leaves the monitor flat.
func (m *PositionMonitor) Open(entryPrice, quantity float64) {
	m.entryPrice = entryPrice
	m.quantity = quantity
	m.isLong = quantity > 0
	m.pnl = 0
	m.pnlPercent = 0
	m.closeFired = false
}

func (m *PositionMonitor) IsOpen() bool { return m.quantity != 0 }

// OnPrice refreshes the unrealized P&L and resets the position when a
// directional stop-loss or take-profit boundary is hit (boundaries
// inclusive). Returns true when it closed the position.
func (m *PositionMonitor) OnPrice(price float64) bool {
	m.closeFired = false
	if m.quantity == 0 {
		return false
	}
	m.pnl = (price - m.entryPrice) * m.quantity
	m.pnlPercent = m.pnl / (m.entryPrice * math.Abs(m.quantity))
	if m.isLong {
		if m.pnlPercent <= -m.stopLoss || m.pnlPercent >= m.takeProfit {
			m.reset()
			return true
		}
	} else {
		if m.pnlPercent >= m.stopLoss || m.pnlPercent <= -m.takeProfit {
			m.reset()
			return true
		}
	}
	return false
}

// ShouldClose reports whether the position should be closed: either the last
// price update already forced a close, or the current P&L sits past the
// direction-agnostic loss distance or the take-profit distance.
func (m *PositionMonitor) ShouldClose() bool {
	if m.closeFired {
		return true
	}
	if m.quantity == 0 {
		return false
	}
	return math.Abs(m.pnlPercent) >= m.stopLoss || m.pnlPercent >= m.takeProfit
}

// UnrealizedPnL is the currency P&L as of the last price update.
func (m *PositionMonitor) UnrealizedPnL() float64 { return m.pnl }

func (m *PositionMonitor) State() PositionState {
	return PositionState{
		Open:       m.IsOpen(),
		EntryPrice: m.entryPrice,
		Quantity:   m.quantity,
		IsLong:     m.isLong,
		PnL:        m.pnl,
		PnLPercent: m.pnlPercent,
	}
}

// Reset discards the position and any latched close condition.
func (m *PositionMonitor) Reset() {
	m.reset()
	m.closeFired = false
}

func (m *PositionMonitor) reset() {
	m.entryPrice = 0
	m.quantity = 0
	m.isLong = false
	m.pnl = 0
	m.pnlPercent = 0
	m.closeFired = true
}
