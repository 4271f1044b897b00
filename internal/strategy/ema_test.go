package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmaSeedsOnFirstSample(t *testing.T) {
	ema := NewEma(12)
	require.False(t, ema.Warm())

	got := ema.Update(101.5)
	assert.Equal(t, 101.5, got)
	assert.True(t, ema.Warm())
}

func TestEmaRecursion(t *testing.T) {
	period := 9
	ema := NewEma(period)
	ema.Update(100)

	alpha := 2.0 / (float64(period) + 1.0)
	want := 100.0
	for _, price := range []float64{102, 98, 105, 103.3} {
		want += alpha * (price - want)
		got := ema.Update(price)
		assert.InDelta(t, want, got, 1e-12)
	}
}
