package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsetrade/internal/domain"
)

func testParams() TrendPullbackParams {
	return TrendPullbackParams{
		FastPeriod:    3,
		SlowPeriod:    5,
		TrendPeriod:   10,
		BandPct:       0.01,
		SwingLookback: 3,
		WindowSize:    5,
	}
}

func candleObs(o, h, l, c float64) domain.Observation {
	return domain.Observation{Price: c, Candle: &domain.Candle{Open: o, High: h, Low: l, Close: c}}
}

func TestTrendPullbackIgnoresBareTicks(t *testing.T) {
	s := NewTrendPullback(testParams())

	sig, info := s.Update(domain.Observation{Price: 100})
	assert.Equal(t, SignalNone, sig)
	assert.False(t, info.HasSwing)
}

func TestTrendPullbackLongSetup(t *testing.T) {
	s := NewTrendPullback(testParams())

	// seed cycle: close equals every EMA, so no trend direction yet
	sig, _ := s.Update(candleObs(100, 101, 99, 100.5))
	require.Equal(t, SignalNone, sig)

	// uptrending bullish candle whose low touches the fast EMA band
	sig, info := s.Update(candleObs(100.5, 102, 100.4, 101.5))
	assert.Equal(t, SignalLong, sig)
	assert.True(t, info.HasSwing)
	assert.Equal(t, 99.0, info.SwingLow, "swing low spans the held candles")
}

func TestTrendPullbackShortSetup(t *testing.T) {
	s := NewTrendPullback(testParams())

	sig, _ := s.Update(candleObs(100, 101, 99, 99.5))
	require.Equal(t, SignalNone, sig)

	// downtrending bearish candle whose high touches the fast EMA band
	sig, info := s.Update(candleObs(99.5, 99.6, 98, 98.5))
	assert.Equal(t, SignalShort, sig)
	assert.Equal(t, 101.0, info.SwingHigh)
}

func TestTrendPullbackNoSignalWithoutTouch(t *testing.T) {
	s := NewTrendPullback(testParams())
	s.Update(candleObs(100, 101, 99, 100.5))

	// strongly bullish but the low stays far above both pullback EMAs
	sig, _ := s.Update(candleObs(110, 115, 109, 114))
	assert.Equal(t, SignalNone, sig)
}

func TestTrendPullbackNoSignalOnBearishCandleInUptrend(t *testing.T) {
	s := NewTrendPullback(testParams())
	s.Update(candleObs(100, 101, 99, 100.5))

	// touches the band and trends up, but the candle itself is bearish
	sig, _ := s.Update(candleObs(101.6, 102, 100.6, 101.2))
	assert.Equal(t, SignalNone, sig)
}

func TestTrendPullbackZeroPriceGuard(t *testing.T) {
	s := NewTrendPullback(testParams())

	// a zero-price series keeps every EMA at zero; the touch test must not
	// divide by the zero EMA
	require.NotPanics(t, func() {
		for i := 0; i < 3; i++ {
			sig, _ := s.Update(candleObs(0, 0, 0, 0))
			assert.Equal(t, SignalNone, sig)
		}
	})
}

func TestTrendPullbackSwingLookbackClamped(t *testing.T) {
	params := testParams()
	params.SwingLookback = 50 // far beyond the held history
	s := NewTrendPullback(params)

	_, info := s.Update(candleObs(100, 104, 97, 103))
	assert.Equal(t, 97.0, info.SwingLow)
	assert.Equal(t, 104.0, info.SwingHigh)
}
