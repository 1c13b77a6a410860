package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlackScholesNonNegative(t *testing.T) {
	spots := []float64{50, 100, 150}
	strikes := []float64{80, 100, 120}
	sigmas := []float64{0.05, 0.2, 0.8}
	for _, s := range spots {
		for _, k := range strikes {
			for _, sigma := range sigmas {
				assert.GreaterOrEqual(t, Call(s, k, 0.25, 0.02, sigma), 0.0)
				assert.GreaterOrEqual(t, Put(s, k, 0.25, 0.02, sigma), 0.0)
			}
		}
	}
}

func TestBlackScholesIntrinsicFallback(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		assert.Equal(t, 10.0, Call(110, 100, 0, 0.02, 0.2))
		assert.Equal(t, 0.0, Call(90, 100, 0, 0.02, 0.2))
		assert.Equal(t, 10.0, Put(90, 100, -0.1, 0.02, 0.2))
		assert.Equal(t, 0.0, Put(110, 100, 0, 0.02, 0.2))
	})
	t.Run("zero volatility", func(t *testing.T) {
		assert.Equal(t, 10.0, Call(110, 100, 0.5, 0.02, 0))
		assert.Equal(t, 10.0, Put(90, 100, 0.5, 0.02, -0.3))
	})
}

func TestBlackScholesPutCallParity(t *testing.T) {
	s, k, tt, r, sigma := 104.0, 100.0, 30.0/365.0, 0.02, 0.35
	call := Call(s, k, tt, r, sigma)
	put := Put(s, k, tt, r, sigma)
	assert.InDelta(t, s-k*math.Exp(-r*tt), call-put, 1e-10)
}

func TestBlackScholesKnownValue(t *testing.T) {
	// ATM call, r=0, sigma=0.2, T=1: C = S*(2*Phi(0.1)-1) ~ 7.9656
	assert.InDelta(t, 7.9656, Call(100, 100, 1, 0, 0.2), 1e-3)
}
