package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsetrade/internal/domain"
)

func tick(price float64) domain.Observation {
	return domain.Observation{Price: price}
}

func TestEmaCrossNoSignalWhileFlat(t *testing.T) {
	s := NewEmaCross(3, 10)

	for i := 0; i < 5; i++ {
		sig, info := s.Update(tick(100))
		assert.Equal(t, SignalNone, sig)
		assert.Equal(t, 100.0, info.EmaFast)
		assert.Equal(t, 100.0, info.EmaSlow)
	}
}

func TestEmaCrossHysteresis(t *testing.T) {
	s := NewEmaCross(3, 10)

	var signals []Signal
	prices := []float64{100, 100, 100}
	for i := 0; i < 10; i++ { // rising leg
		prices = append(prices, 100+float64(i+1))
	}
	for i := 0; i < 20; i++ { // falling leg
		prices = append(prices, 110-float64(i+1))
	}

	for _, p := range prices {
		sig, _ := s.Update(tick(p))
		if sig != SignalNone {
			signals = append(signals, sig)
		}
	}

	require.Len(t, signals, 2, "exactly one long and one short over one up-down sweep")
	assert.Equal(t, SignalLong, signals[0])
	assert.Equal(t, SignalShort, signals[1])
}

func TestEmaCrossNoRepeatWhileOrderingPersists(t *testing.T) {
	s := NewEmaCross(2, 6)

	longs := 0
	for _, p := range []float64{100, 105, 110, 115, 120, 125} {
		sig, _ := s.Update(tick(p))
		if sig == SignalLong {
			longs++
		}
		require.NotEqual(t, SignalShort, sig)
	}
	assert.Equal(t, 1, longs)
}

func TestEmaCrossUsesCandleClose(t *testing.T) {
	s := NewEmaCross(2, 6)
	s.Update(tick(100))

	sig, info := s.Update(domain.Observation{Price: 0, Candle: &domain.Candle{Open: 100, High: 130, Low: 99, Close: 120}})
	assert.Equal(t, SignalLong, sig)
	assert.Greater(t, info.EmaFast, info.EmaSlow)
}
