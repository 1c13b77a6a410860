// Package indicator derives classical technical-analysis context from a
// candle window. The report is diagnostic only; the decision rule never reads
// it.
package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"volcast/internal/market"
)

// Settings describes the indicator parameters.
type Settings struct {
	EMAFast    int
	EMASlow    int
	RSIPeriod  int
	Overbought float64
	Oversold   float64
}

// Value holds one indicator's latest reading and a coarse state label.
type Value struct {
	Latest float64 `json:"latest"`
	State  string  `json:"state,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Report aggregates the indicator values for one candle window.
type Report struct {
	Count  int              `json:"count"`
	Values map[string]Value `json:"values"`
}

// Compute evaluates EMA fast/slow, RSI, and ATR over the window.
func Compute(candles []market.Candle, cfg Settings) (Report, error) {
	rep := Report{Count: len(candles), Values: make(map[string]Value)}
	if len(candles) == 0 {
		return rep, fmt.Errorf("no candles")
	}
	if cfg.EMAFast <= 0 {
		cfg.EMAFast = 21
	}
	if cfg.EMASlow <= 0 {
		cfg.EMASlow = 50
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.Overbought == 0 {
		cfg.Overbought = 70
	}
	if cfg.Oversold == 0 {
		cfg.Oversold = 30
	}

	closes := market.Closes(candles)
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
	}
	lastClose := closes[len(closes)-1]

	emaFast := lastValid(talib.Ema(closes, cfg.EMAFast))
	emaSlow := lastValid(talib.Ema(closes, cfg.EMASlow))
	rep.Values["ema_fast"] = Value{
		Latest: emaFast,
		State:  relativeState(lastClose, emaFast),
		Note:   fmt.Sprintf("EMA%d vs price", cfg.EMAFast),
	}
	rep.Values["ema_slow"] = Value{
		Latest: emaSlow,
		State:  relativeState(lastClose, emaSlow),
		Note:   fmt.Sprintf("EMA%d vs price", cfg.EMASlow),
	}

	rsi := lastValid(talib.Rsi(closes, cfg.RSIPeriod))
	state := "neutral"
	switch {
	case rsi >= cfg.Overbought:
		state = "overbought"
	case rsi <= cfg.Oversold:
		state = "oversold"
	}
	rep.Values["rsi"] = Value{
		Latest: rsi,
		State:  state,
		Note:   fmt.Sprintf("period=%d thresholds=%.1f/%.1f", cfg.RSIPeriod, cfg.Oversold, cfg.Overbought),
	}

	atr := lastValid(talib.Atr(highs, lows, closes, 14))
	rep.Values["atr"] = Value{Latest: atr, State: "volatility", Note: "period=14"}

	return rep, nil
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}

func relativeState(price, ref float64) string {
	switch {
	case ref == 0:
		return "unknown"
	case price > ref:
		return "above"
	case price < ref:
		return "below"
	default:
		return "at"
	}
}
