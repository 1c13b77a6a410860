package engine

import (
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// dailyStep is one trading day expressed in years.
const dailyStep = 1.0 / tradingDaysPerYear

// PathSimulator draws batches of GBM terminal prices. Every simulation runs
// on its own PCG stream derived from the construction seed, the batch
// counter, and the simulation index, so a batch is bit-reproducible for a
// fixed seed and invariant to the worker count.
type PathSimulator struct {
	seed    uint64
	batch   uint64
	workers int
}

func NewPathSimulator(seed uint64, workers int) *PathSimulator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PathSimulator{seed: seed, workers: workers}
}

func (p *PathSimulator) SetWorkers(workers int) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p.workers = workers
}

// Simulate returns sims terminal prices after days daily GBM steps from s0.
// The batch always runs to completion; there is no partial mode.
func (p *PathSimulator) Simulate(s0, drift, volatility float64, days, sims int) []float64 {
	if sims <= 0 || days <= 0 {
		return nil
	}
	out := make([]float64, sims)
	batch := p.batch
	p.batch++

	workers := p.workers
	if workers > sims {
		workers = sims
	}
	chunk := (sims + workers - 1) / workers
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > sims {
			hi = sims
		}
		if lo >= hi {
			break
		}
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = terminalPrice(p.stream(batch, i), s0, drift, volatility, days)
			}
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors; Wait only joins them
	return out
}

// stream builds the independent RNG for one simulation of one batch.
func (p *PathSimulator) stream(batch uint64, sim int) *rand.Rand {
	return rand.New(rand.NewPCG(p.seed, batch<<32|uint64(sim)))
}

func terminalPrice(rng *rand.Rand, s0, drift, volatility float64, days int) float64 {
	price := s0
	for d := 0; d < days; d++ {
		z := rng.NormFloat64()
		price *= math.Exp((drift-0.5*volatility*volatility)*dailyStep + volatility*math.Sqrt(dailyStep)*z)
	}
	return price
}
