package strategy

import (
	"math"

	"pulsetrade/internal/domain"
)

// TrendPullbackParams configures the trend-pullback variant
type TrendPullbackParams struct {
	FastPeriod    int
	SlowPeriod    int
	TrendPeriod   int
	BandPct       float64 // fraction, e.g. 0.0015
	SwingLookback int
	WindowSize    int
}

// TrendPullback trades pullbacks to the fast or slow EMA in the direction of
// the trend EMA. A long setup needs an uptrending close, a candle low inside
// the band around one of the pullback EMAs, and a bullish candle; short is
// the mirror on candle highs. The swing low/high over the last SwingLookback
// candles is the stop reference.
type TrendPullback struct {
	params TrendPullbackParams

	fast  *Ema
	slow  *Ema
	trend *Ema
	highs *Window
	lows  *Window
}

func NewTrendPullback(params TrendPullbackParams) *TrendPullback {
	return &TrendPullback{
		params: params,
		fast:   NewEma(params.FastPeriod),
		slow:   NewEma(params.SlowPeriod),
		trend:  NewEma(params.TrendPeriod),
		highs:  NewWindow(params.WindowSize),
		lows:   NewWindow(params.WindowSize),
	}
}

func (s *TrendPullback) Name() string { return "trend_pullback" }

func (s *TrendPullback) Update(obs domain.Observation) (Signal, Info) {
	c := obs.Candle
	if c == nil {
		// the variant needs candle structure; a bare tick cannot form a setup
		return SignalNone, Info{EmaFast: s.fast.Value(), EmaSlow: s.slow.Value(), EmaTrend: s.trend.Value()}
	}

	s.lows.Push(c.Low)
	s.highs.Push(c.High)

	fast := s.fast.Update(c.Close)
	slow := s.slow.Update(c.Close)
	trend := s.trend.Update(c.Close)

	swingLow := s.lows.MinLast(s.params.SwingLookback)
	swingHigh := s.highs.MaxLast(s.params.SwingLookback)
	info := Info{
		EmaFast:   fast,
		EmaSlow:   slow,
		EmaTrend:  trend,
		SwingLow:  swingLow,
		SwingHigh: swingHigh,
		HasSwing:  true,
	}

	trendUp := c.Close > trend
	trendDown := c.Close < trend

	if trendUp && (s.near(c.Low, fast) || s.near(c.Low, slow)) && c.Bullish() {
		return SignalLong, info
	}
	if trendDown && (s.near(c.High, fast) || s.near(c.High, slow)) && c.Bearish() {
		return SignalShort, info
	}
	return SignalNone, info
}

// near tests |x-ema|/ema <= band. A zero EMA (only possible from a zero
// price) would divide by zero, so it never counts as a touch.
func (s *TrendPullback) near(x, ema float64) bool {
	if ema == 0 {
		return false
	}
	return math.Abs(x-ema)/ema <= s.params.BandPct
}
