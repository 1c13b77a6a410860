package engine

import "math"

// Action is the fused trading decision.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "hold"
	}
}

// LegacyInt maps the action to the integer encoding bar-oriented hosts
// expect: 1 buy, -1 sell, 0 hold.
func (a Action) LegacyInt() int {
	switch a {
	case ActionBuy:
		return 1
	case ActionSell:
		return -1
	default:
		return 0
	}
}

// Signal is the per-bar decision. Exactly one of BuyStrength/SellStrength is
// non-zero, or both are zero on Hold.
type Signal struct {
	Action       Action  `json:"action"`
	BuyStrength  float64 `json:"buy_strength"`
	SellStrength float64 `json:"sell_strength"`
	Confidence   float64 `json:"confidence"`
}

const (
	// minBarsForSignal gates the whole decision path; below it the zero/Hold
	// signal is returned unconditionally.
	minBarsForSignal = 30

	driftWindow       = 21        // recent returns feeding the drift estimate
	simulationHorizon = 21        // trading days simulated per batch
	optionExpiry      = 30.0 / 365.0
	otmBand           = 0.05 // strike offset and normalization band

	buyReturnThreshold  = 0.08
	buyProbThreshold    = 0.6
	buyVolCeiling       = 0.4
	buyCallThreshold    = 0.3
	sellReturnThreshold = -0.05
	sellProbThreshold   = 0.6
	sellVolFloor        = 0.6
	sellPutThreshold    = 0.4
	strengthScale       = 0.15
	confidenceBaseline  = 1000.0
)

// SignalGenerator fuses simulation statistics and option valuations into a
// Signal. It is pure apart from the randomness consumed by the simulator.
type SignalGenerator struct {
	sim          *PathSimulator
	riskFreeRate float64
	sims         int
}

func NewSignalGenerator(sim *PathSimulator, riskFreeRate float64, sims int) *SignalGenerator {
	return &SignalGenerator{sim: sim, riskFreeRate: riskFreeRate, sims: sims}
}

func (g *SignalGenerator) Configure(riskFreeRate float64, sims int) {
	g.riskFreeRate = riskFreeRate
	g.sims = sims
}

// Generate evaluates one bar. prices and returns are the engine's rolling
// windows; volatility is the current annualized estimate.
func (g *SignalGenerator) Generate(price float64, prices, returns []float64, volatility float64) Signal {
	if len(prices) < minBarsForSignal {
		return Signal{}
	}
	drift := annualizedDrift(returns)
	batch := g.sim.Simulate(price, drift, volatility, simulationHorizon, g.sims)
	stats := summarize(price, batch)

	callValue := Call(price, price*(1+otmBand), optionExpiry, g.riskFreeRate, volatility)
	putValue := Put(price, price*(1-otmBand), optionExpiry, g.riskFreeRate, volatility)
	callSignal := callValue / (price * otmBand)
	putSignal := putValue / (price * otmBand)

	return decide(stats, volatility, callSignal, putSignal, len(batch))
}

// annualizedDrift averages the most recent driftWindow log returns and
// annualizes; with fewer than driftWindow returns the drift is zero.
func annualizedDrift(returns []float64) float64 {
	if len(returns) < driftWindow {
		return 0
	}
	total := 0.0
	for _, r := range returns[len(returns)-driftWindow:] {
		total += r
	}
	return total / driftWindow * tradingDaysPerYear
}

// batchStats are the aggregates extracted from one simulation batch.
type batchStats struct {
	expectedReturn float64
	profitProb     float64
	lossProb       float64
}

func summarize(spot float64, batch []float64) batchStats {
	if len(batch) == 0 {
		return batchStats{}
	}
	mean := 0.0
	profitable, losing := 0, 0
	for _, price := range batch {
		mean += price
		if price > spot*(1+otmBand) {
			profitable++
		} else if price < spot*(1-otmBand) {
			losing++
		}
	}
	n := float64(len(batch))
	mean /= n
	return batchStats{
		expectedReturn: (mean - spot) / spot,
		profitProb:     float64(profitable) / n,
		lossProb:       float64(losing) / n,
	}
}

// decide applies the fusion rule: the buy gate is checked first, the sell
// gate only when it fails.
func decide(stats batchStats, volatility, callSignal, putSignal float64, sims int) Signal {
	sig := Signal{Confidence: clamp01(float64(sims) / confidenceBaseline)}
	switch {
	case stats.expectedReturn > buyReturnThreshold &&
		stats.profitProb > buyProbThreshold &&
		volatility < buyVolCeiling &&
		callSignal > buyCallThreshold:
		sig.Action = ActionBuy
		sig.BuyStrength = clamp01(stats.expectedReturn * stats.profitProb * callSignal / strengthScale)
	case stats.expectedReturn < sellReturnThreshold ||
		stats.lossProb > sellProbThreshold ||
		volatility > sellVolFloor ||
		putSignal > sellPutThreshold:
		sig.Action = ActionSell
		sig.SellStrength = clamp01(math.Abs(stats.expectedReturn) * stats.lossProb * putSignal / strengthScale)
	}
	return sig
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
