package domain

// Portfolio tracks account equity and the per-day risk counters for one
// symbol. At most one position is open at a time.
type Portfolio struct {
	Equity         float64   `json:"equity"`
	DayStartEquity float64   `json:"day_start_equity"`
	DailyPnl       float64   `json:"daily_pnl"`
	TradesToday    int       `json:"trades_today"`
	DayUTC         string    `json:"day_utc"` // YYYY-MM-DD
	Position       *Position `json:"position,omitempty"`
}

// NewPortfolio creates the portfolio at process start
func NewPortfolio(initialEquity float64, day string) *Portfolio {
	return &Portfolio{
		Equity:         initialEquity,
		DayStartEquity: initialEquity,
		DayUTC:         day,
	}
}

// Flat reports whether no position is open
func (p *Portfolio) Flat() bool { return p.Position == nil }

// ApplyEquityDelta mutates equity and recomputes DailyPnl from the day-start
// snapshot. DailyPnl is never accumulated independently, so it cannot drift.
func (p *Portfolio) ApplyEquityDelta(delta float64) {
	p.Equity += delta
	p.DailyPnl = p.Equity - p.DayStartEquity
}

// StartDay resets the daily counters for a new UTC day
func (p *Portfolio) StartDay(day string) {
	p.DayUTC = day
	p.TradesToday = 0
	p.DayStartEquity = p.Equity
	p.DailyPnl = 0
}

// Snapshot returns a copy safe to hand to other goroutines. The position, if
// any, is copied too.
func (p *Portfolio) Snapshot() Portfolio {
	cp := *p
	if p.Position != nil {
		pos := *p.Position
		cp.Position = &pos
	}
	return cp
}
