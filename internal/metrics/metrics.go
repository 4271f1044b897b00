package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors
type Metrics struct {
	CyclesTotal      prometheus.Counter
	MarketDataErrors prometheus.Counter
	PositionsOpened  prometheus.Counter
	PositionsClosed  *prometheus.CounterVec
	EntriesSkipped   prometheus.Counter
	Equity           prometheus.Gauge
	DailyPnl         prometheus.Gauge
}

// New builds and registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_cycles_total",
			Help: "Observations fully processed by the engine.",
		}),
		MarketDataErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_marketdata_errors_total",
			Help: "Failed market-data fetches (cycle skipped).",
		}),
		PositionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_positions_opened_total",
			Help: "Positions opened.",
		}),
		PositionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_positions_closed_total",
			Help: "Positions closed, partitioned by trigger reason.",
		}, []string{"reason"}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_entries_skipped_total",
			Help: "Entries skipped due to sizing errors.",
		}),
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_equity",
			Help: "Current account equity.",
		}),
		DailyPnl: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_daily_pnl",
			Help: "Profit and loss since the UTC day start.",
		}),
	}
	reg.MustRegister(
		m.CyclesTotal,
		m.MarketDataErrors,
		m.PositionsOpened,
		m.PositionsClosed,
		m.EntriesSkipped,
		m.Equity,
		m.DailyPnl,
	)
	return m
}
