// Package trading provides trading calculation utilities.
package trading

import "github.com/shopspring/decimal"

// SuggestQuantity returns the quantity affordable with equity*maxPositionPct
// at price, floored to a multiple of lotStep (lotStep<=0 means no rounding).
// This is advice for the execution layer; the engine itself never sizes or
// routes orders.
func SuggestQuantity(equity, price, maxPositionPct, lotStep float64) float64 {
	if equity <= 0 || price <= 0 || maxPositionPct <= 0 {
		return 0
	}
	budget := decimal.NewFromFloat(equity).Mul(decimal.NewFromFloat(maxPositionPct))
	qty := budget.Div(decimal.NewFromFloat(price))
	if lotStep > 0 {
		step := decimal.NewFromFloat(lotStep)
		qty = qty.Div(step).Floor().Mul(step)
	}
	f, _ := qty.Float64()
	return f
}

// RoundPrice snaps price to the nearest multiple of tick, rounding half up.
func RoundPrice(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	f, _ := p.Div(t).Round(0).Mul(t).Float64()
	return f
}
