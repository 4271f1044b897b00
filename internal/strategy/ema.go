package strategy

// Ema is a single exponential moving average. The first sample seeds the
// value directly; every later sample follows ema' = ema + alpha*(price-ema)
// with alpha = 2/(period+1).
type Ema struct {
	period int
	value  float64
	warm   bool
}

func NewEma(period int) *Ema {
	return &Ema{period: period}
}

// Update feeds one price and returns the new average
func (e *Ema) Update(price float64) float64 {
	if !e.warm {
		e.value = price
		e.warm = true
		return e.value
	}
	alpha := 2.0 / (float64(e.period) + 1.0)
	e.value += alpha * (price - e.value)
	return e.value
}

func (e *Ema) Value() float64 { return e.value }
func (e *Ema) Warm() bool     { return e.warm }
