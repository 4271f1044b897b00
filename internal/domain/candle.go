package domain

import "time"

// Candle represents one closed kline
type Candle struct {
	OpenTime  time.Time `json:"open_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	CloseTime time.Time `json:"close_time"`
}

// Bullish reports whether the candle closed above its open
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Observation is one market-data update: either a plain last-trade price or a
// closed candle. When a candle is present its close is the decision price.
type Observation struct {
	Price  float64
	Candle *Candle
}

// DecisionPrice returns the price strategies and the broker decide on
func (o Observation) DecisionPrice() float64 {
	if o.Candle != nil {
		return o.Candle.Close
	}
	return o.Price
}

// Range returns the low and high covered by the observation. A plain tick
// covers only its own price.
func (o Observation) Range() (low, high float64) {
	if o.Candle != nil {
		return o.Candle.Low, o.Candle.High
	}
	return o.Price, o.Price
}
