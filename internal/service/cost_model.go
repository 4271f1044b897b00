package service

import "pulsetrade/internal/domain"

// CostModel converts signal prices into fill prices and fees. It is pure and
// stateless: slippage always moves the fill against the trader and fees are
// proportional to notional.
type CostModel struct {
	feeRate  float64
	slipRate float64
}

// NewCostModel builds a cost model from basis-point rates
func NewCostModel(feeBps, slippageBps float64) *CostModel {
	return &CostModel{
		feeRate:  feeBps / 10000.0,
		slipRate: slippageBps / 10000.0,
	}
}

// EntryFill is the result of filling an entry order
type EntryFill struct {
	FillPrice float64
	Slippage  float64
	Fee       float64
}

// ExitFill is the result of filling an exit order
type ExitFill struct {
	FillPrice float64
	Slippage  float64
	Fee       float64
	GrossPnl  float64
}

// Entry fills an entry order at the signal price moved against the trader:
// longs buy at signalPrice*(1+slip), shorts sell at signalPrice*(1-slip).
// The fee is charged against equity at open time, not netted into the close.
func (m *CostModel) Entry(signalPrice float64, side string, notional float64) EntryFill {
	fill := signalPrice * (1 + m.slipRate)
	if side == domain.SideShort {
		fill = signalPrice * (1 - m.slipRate)
	}
	return EntryFill{
		FillPrice: fill,
		Slippage:  notional * m.slipRate,
		Fee:       notional * m.feeRate,
	}
}

// Exit fills an exit order, again moved against the trader: longs sell at
// signalPrice*(1-slip), shorts buy at signalPrice*(1+slip). GrossPnl is
// computed against the entry fill; net PnL at close is GrossPnl minus the
// exit fee only — the entry fee was already deducted at open and must not be
// subtracted twice.
func (m *CostModel) Exit(signalPrice float64, side string, notional, entryPrice float64) ExitFill {
	fill := signalPrice * (1 - m.slipRate)
	if side == domain.SideShort {
		fill = signalPrice * (1 + m.slipRate)
	}
	quantity := notional / entryPrice
	gross := (fill - entryPrice) * quantity
	if side == domain.SideShort {
		gross = (entryPrice - fill) * quantity
	}
	return ExitFill{
		FillPrice: fill,
		Slippage:  notional * m.slipRate,
		Fee:       notional * m.feeRate,
		GrossPnl:  gross,
	}
}
