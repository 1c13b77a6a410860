// Package engine implements the per-bar quantitative signal engine: rolling
// volatility estimation, Monte Carlo GBM simulation, Black-Scholes valuation,
// decision fusion, and stop-loss/take-profit position monitoring.
package engine

import (
	"math/rand/v2"
)

// Result is what one bar evaluation yields.
type Result struct {
	Action       Action  `json:"action"`
	BuyStrength  float64 `json:"buy_strength"`
	SellStrength float64 `json:"sell_strength"`
	Confidence   float64 `json:"confidence"`
}

// Engine owns the rolling history, the simulator, and the single position.
// It is not safe for concurrent use: bars must be submitted one at a time.
type Engine struct {
	settings Settings
	seed     uint64
	seeded   bool

	vol      *VolatilityEstimator
	sim      *PathSimulator
	gen      *SignalGenerator
	position *PositionMonitor
}

type Option func(*Engine)

// WithSeed fixes the simulator seed so runs are bit-reproducible. Without it
// each engine draws a fresh seed at construction.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

func New(settings Settings, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{settings: settings}
	for _, opt := range opts {
		opt(e)
	}
	if !e.seeded {
		e.seed = rand.Uint64()
	}
	e.vol = NewVolatilityEstimator(settings.LookbackPeriod)
	e.sim = NewPathSimulator(e.seed, settings.SimWorkers)
	e.gen = NewSignalGenerator(e.sim, settings.RiskFreeRate, settings.MonteCarloSims)
	e.position = NewPositionMonitor(settings.StopLossPercent, settings.TakeProfitPercent)
	return e, nil
}

// AnalyzeBar evaluates one bar and updates the position monitor. Only close
// feeds the model; open/high/low/volume/barIndex are accepted for
// compatibility with bar-oriented callers.
func (e *Engine) AnalyzeBar(open, high, low, close, volume float64, barIndex int) Result {
	_, _, _, _ = open, high, low, volume
	_ = barIndex

	volatility := e.vol.Update(close)
	if e.vol.SampleSize() < minBarsForSignal {
		return Result{Action: ActionHold}
	}
	sig := e.gen.Generate(close, e.vol.prices, e.vol.returns, volatility)
	e.position.OnPrice(close)
	return Result{
		Action:       sig.Action,
		BuyStrength:  sig.BuyStrength,
		SellStrength: sig.SellStrength,
		Confidence:   sig.Confidence,
	}
}

// OpenPosition records an entry; a negative quantity opens a short.
func (e *Engine) OpenPosition(entryPrice, quantity float64) {
	e.position.Open(entryPrice, quantity)
}

// ResetPosition discards the open position without booking anything.
func (e *Engine) ResetPosition() {
	e.position.Reset()
}

// UnrealizedPnL is the currency P&L of the open position as of the last bar.
func (e *Engine) UnrealizedPnL() float64 { return e.position.UnrealizedPnL() }

func (e *Engine) ShouldClosePosition() bool { return e.position.ShouldClose() }

func (e *Engine) Position() PositionState { return e.position.State() }

func (e *Engine) Settings() Settings { return e.settings }

// Volatility is the current annualized estimate.
func (e *Engine) Volatility() float64 { return e.vol.Annualized() }

// ApplySettings swaps in a new parameter set between bars. Invalid settings
// are rejected and the previous ones stay in effect. The open position and
// price history survive the change.
func (e *Engine) ApplySettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	e.settings = settings
	e.vol.Resize(settings.LookbackPeriod)
	e.sim.SetWorkers(settings.SimWorkers)
	e.gen.Configure(settings.RiskFreeRate, settings.MonteCarloSims)
	e.position.SetThresholds(settings.StopLossPercent, settings.TakeProfitPercent)
	return nil
}
