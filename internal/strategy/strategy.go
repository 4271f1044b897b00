package strategy

import (
	"fmt"

	"pulsetrade/configs"
	"pulsetrade/internal/domain"
)

// Signal is the directional output of a strategy update
type Signal int

const (
	SignalNone Signal = iota
	SignalLong
	SignalShort
)

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	default:
		return "none"
	}
}

// Info carries the variant-specific levels that accompany a signal. Swing
// levels are only meaningful when HasSwing is set.
type Info struct {
	EmaFast   float64
	EmaSlow   float64
	EmaTrend  float64
	SwingLow  float64
	SwingHigh float64
	HasSwing  bool
}

// Strategy consumes one observation per call and emits at most one signal.
// The variant is chosen at construction time; callers never branch on the
// name afterwards.
type Strategy interface {
	Update(obs domain.Observation) (Signal, Info)
	Name() string
}

// New builds the configured strategy variant
func New(cfg configs.StrategyConfig) (Strategy, error) {
	switch cfg.Name {
	case "ema_cross":
		return NewEmaCross(cfg.EmaFast, cfg.EmaSlow), nil
	case "trend_pullback":
		return NewTrendPullback(TrendPullbackParams{
			FastPeriod:    cfg.EmaPullbackFast,
			SlowPeriod:    cfg.EmaPullbackSlow,
			TrendPeriod:   cfg.EmaTrend,
			BandPct:       cfg.PullbackBandPct,
			SwingLookback: cfg.SwingLookback,
			WindowSize:    cfg.WindowSize,
		}), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
	}
}
