package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4} {
		w.Push(v)
	}

	assert.Equal(t, 3, w.Len())
	// the 1 was evicted, so the minimum over everything held is 2
	assert.Equal(t, 2.0, w.MinLast(3))
	assert.Equal(t, 4.0, w.MaxLast(3))
}

func TestWindowLastN(t *testing.T) {
	w := NewWindow(5)
	for _, v := range []float64{9, 1, 7, 3, 5} {
		w.Push(v)
	}

	assert.Equal(t, 3.0, w.MinLast(2))
	assert.Equal(t, 5.0, w.MaxLast(2))
	assert.Equal(t, 1.0, w.MinLast(4))
	assert.Equal(t, 9.0, w.MaxLast(5))
}

func TestWindowClampsLookback(t *testing.T) {
	w := NewWindow(10)
	w.Push(42)

	// asking for more history than held falls back to what exists
	assert.Equal(t, 42.0, w.MinLast(5))
	assert.Equal(t, 42.0, w.MaxLast(5))
	// a lookback below one still reads at least one sample
	assert.Equal(t, 42.0, w.MinLast(0))
}
