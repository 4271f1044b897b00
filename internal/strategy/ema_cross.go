package strategy

import "pulsetrade/internal/domain"

// EmaCross emits a signal when the fast EMA changes side relative to the
// slow EMA. The last emitted signal acts as a hysteresis guard: while the
// ordering persists no further signal fires, and the guard survives warm-up.
type EmaCross struct {
	fast *Ema
	slow *Ema
	last Signal
}

func NewEmaCross(fastPeriod, slowPeriod int) *EmaCross {
	return &EmaCross{
		fast: NewEma(fastPeriod),
		slow: NewEma(slowPeriod),
	}
}

func (s *EmaCross) Name() string { return "ema_cross" }

func (s *EmaCross) Update(obs domain.Observation) (Signal, Info) {
	price := obs.DecisionPrice()
	fast := s.fast.Update(price)
	slow := s.slow.Update(price)
	info := Info{EmaFast: fast, EmaSlow: slow}

	if fast > slow && s.last != SignalLong {
		s.last = SignalLong
		return SignalLong, info
	}
	if fast < slow && s.last != SignalShort {
		s.last = SignalShort
		return SignalShort, info
	}
	return SignalNone, info
}
