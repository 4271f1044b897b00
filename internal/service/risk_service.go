package service

import (
	"math"
	"time"

	"pulsetrade/internal/domain"
	"pulsetrade/internal/utils"
)

// RiskService owns sizing and the daily risk gates. Leverage policy is
// enforced only here; the broker never applies its own cap.
type RiskService struct {
	riskPerTrade    float64 // fraction of equity risked per trade
	maxLeverage     float64
	maxDailyLoss    float64 // fraction of day-start equity
	maxTradesPerDay int
}

func NewRiskService(riskPerTradePct, maxDailyLossPct, maxLeverage float64, maxTradesPerDay int) *RiskService {
	return &RiskService{
		riskPerTrade:    riskPerTradePct / 100.0,
		maxLeverage:     maxLeverage,
		maxDailyLoss:    maxDailyLossPct / 100.0,
		maxTradesPerDay: maxTradesPerDay,
	}
}

// SizeNotional computes the position notional for a given stop. The risk
// amount equity*riskPerTrade is spread over the stop distance and the result
// is capped at equity*maxLeverage.
func (r *RiskService) SizeNotional(equity, price, stopPrice float64) (float64, error) {
	stopDistance := math.Abs(price - stopPrice)
	if stopDistance <= 0 {
		return 0, domain.ErrInvalidStop
	}
	riskAmount := equity * r.riskPerTrade
	notional := riskAmount * price / stopDistance
	if limit := equity * r.maxLeverage; notional > limit {
		notional = limit
	}
	if notional <= 0 {
		return 0, domain.ErrDegenerateNotional
	}
	return notional, nil
}

// RolloverIfNeeded resets the portfolio day counters when the UTC calendar
// day has changed. Calling it twice on the same day is a no-op the second
// time.
func (r *RiskService) RolloverIfNeeded(pf *domain.Portfolio, now time.Time) bool {
	day := utils.UTCDay(now)
	if day == pf.DayUTC {
		return false
	}
	pf.StartDay(day)
	return true
}

// DailyLossBreached reports whether the daily loss kill-switch is active
func (r *RiskService) DailyLossBreached(pf *domain.Portfolio) bool {
	return pf.DailyPnl <= -r.maxDailyLoss*pf.DayStartEquity
}

// DailyLossLimit returns the PnL threshold at which the kill-switch engages
func (r *RiskService) DailyLossLimit(pf *domain.Portfolio) float64 {
	return -r.maxDailyLoss * pf.DayStartEquity
}

// TradeCapReached reports whether the max-trades-per-day gate blocks entries
func (r *RiskService) TradeCapReached(pf *domain.Portfolio) bool {
	return pf.TradesToday >= r.maxTradesPerDay
}
