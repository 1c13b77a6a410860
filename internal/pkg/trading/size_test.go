package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestQuantity(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		// 10% of 100k at price 50 -> 200
		assert.Equal(t, 200.0, SuggestQuantity(100_000, 50, 0.10, 0))
	})
	t.Run("lot step floors", func(t *testing.T) {
		// 10% of 10k at 307.5 -> 3.2520..., floored to 3
		assert.Equal(t, 3.0, SuggestQuantity(10_000, 307.5, 0.10, 1))
	})
	t.Run("fractional lot step", func(t *testing.T) {
		assert.Equal(t, 3.25, SuggestQuantity(10_000, 307.5, 0.10, 0.05))
	})
	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Equal(t, 0.0, SuggestQuantity(0, 50, 0.10, 1))
		assert.Equal(t, 0.0, SuggestQuantity(1000, 0, 0.10, 1))
		assert.Equal(t, 0.0, SuggestQuantity(1000, 50, 0, 1))
	})
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 100.25, RoundPrice(100.26, 0.25))
	assert.Equal(t, 100.5, RoundPrice(100.4, 0.5))
	assert.Equal(t, 99.9, RoundPrice(99.9, 0))
}
