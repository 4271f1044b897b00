package service

import (
	"math"
	"time"

	"github.com/google/uuid"

	"pulsetrade/internal/domain"
)

// BrokerService owns the single position slot: it fills entries and exits
// through the cost model and keeps the portfolio's equity and daily PnL
// consistent. The state machine is strictly Flat -> Open -> Flat.
type BrokerService struct {
	cost          *CostModel
	rrTakeProfit  float64 // reward:risk multiple; 0 means no target
	maxHoldCycles int     // 0 disables the time exit
}

func NewBrokerService(cost *CostModel, rrTakeProfit float64, maxHoldCycles int) *BrokerService {
	return &BrokerService{
		cost:          cost,
		rrTakeProfit:  rrTakeProfit,
		maxHoldCycles: maxHoldCycles,
	}
}

// Open fills an entry and installs the position. The entry fee is deducted
// from equity immediately; close-time accounting must not subtract it again.
// The take-profit level, when a reward:risk multiple is configured, sits at
// entry + rr*(entry-stop) for longs and mirrored for shorts.
func (b *BrokerService) Open(pf *domain.Portfolio, symbol, side string, signalPrice, stopPrice, notional float64, now time.Time) *domain.Position {
	fill := b.cost.Entry(signalPrice, side, notional)

	var takeProfit *float64
	if b.rrTakeProfit > 0 {
		stopDistance := math.Abs(fill.FillPrice - stopPrice)
		target := fill.FillPrice + b.rrTakeProfit*stopDistance
		if side == domain.SideShort {
			target = fill.FillPrice - b.rrTakeProfit*stopDistance
		}
		takeProfit = &target
	}

	pos := &domain.Position{
		ID:              uuid.New(),
		Symbol:          symbol,
		Side:            side,
		EntryPrice:      fill.FillPrice,
		Size:            notional / fill.FillPrice,
		Notional:        notional,
		StopPrice:       stopPrice,
		TakeProfitPrice: takeProfit,
		EntryFee:        fill.Fee,
		EntrySlippage:   fill.Slippage,
		OpenedAt:        now,
	}

	pf.Position = pos
	pf.ApplyEquityDelta(-fill.Fee)
	pf.TradesToday++
	return pos
}

// CloseResult records one completed close transition
type CloseResult struct {
	Position domain.Position // copy taken before the slot was cleared
	Reason   string
	Fill     ExitFill
	NetPnl   float64
	ClosedAt time.Time
}

// EvaluateExit runs the per-cycle exit checks for an open position and
// returns a result when it closed. Priority is stop-loss, then take-profit,
// then the time exit; when one candle spans both stop and target the stop
// wins, a conservative tie-break since intracandle order is unknown. Stops
// and targets fill at their trigger level, time exits at the decision price.
func (b *BrokerService) EvaluateExit(pf *domain.Portfolio, obs domain.Observation, now time.Time) *CloseResult {
	pos := pf.Position
	if pos == nil {
		return nil
	}

	low, high := obs.Range()
	var stopHit, targetHit bool
	if pos.IsLong() {
		stopHit = low <= pos.StopPrice
		targetHit = pos.TakeProfitPrice != nil && high >= *pos.TakeProfitPrice
	} else {
		stopHit = high >= pos.StopPrice
		targetHit = pos.TakeProfitPrice != nil && low <= *pos.TakeProfitPrice
	}

	switch {
	case stopHit:
		return b.close(pf, pos.StopPrice, domain.ReasonStopLoss, now)
	case targetHit:
		return b.close(pf, *pos.TakeProfitPrice, domain.ReasonTakeProfit, now)
	}

	pos.HoldCycles++
	if b.maxHoldCycles > 0 && pos.HoldCycles >= b.maxHoldCycles {
		return b.close(pf, obs.DecisionPrice(), domain.ReasonTimeExit, now)
	}
	return nil
}

func (b *BrokerService) close(pf *domain.Portfolio, exitSignalPrice float64, reason string, now time.Time) *CloseResult {
	pos := pf.Position
	fill := b.cost.Exit(exitSignalPrice, pos.Side, pos.Notional, pos.EntryPrice)
	net := fill.GrossPnl - fill.Fee

	closed := *pos
	pf.Position = nil
	pf.ApplyEquityDelta(net)

	return &CloseResult{
		Position: closed,
		Reason:   reason,
		Fill:     fill,
		NetPnl:   net,
		ClosedAt: now,
	}
}
