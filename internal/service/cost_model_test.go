package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pulsetrade/internal/domain"
)

func TestEntrySlippageMovesAgainstTrader(t *testing.T) {
	m := NewCostModel(8, 2) // 0.08% fee, 0.02% slip

	long := m.Entry(100, domain.SideLong, 1000)
	assert.InDelta(t, 100.02, long.FillPrice, 1e-9, "long buys above the signal price")

	short := m.Entry(100, domain.SideShort, 1000)
	assert.InDelta(t, 99.98, short.FillPrice, 1e-9, "short sells below the signal price")

	assert.InDelta(t, 0.8, long.Fee, 1e-9)
	assert.InDelta(t, 0.2, long.Slippage, 1e-9)
}

func TestExitSlippageMovesAgainstTrader(t *testing.T) {
	m := NewCostModel(8, 2)

	long := m.Exit(100, domain.SideLong, 1000, 100)
	assert.InDelta(t, 99.98, long.FillPrice, 1e-9, "long sells below the signal price")

	short := m.Exit(100, domain.SideShort, 1000, 100)
	assert.InDelta(t, 100.02, short.FillPrice, 1e-9, "short buys above the signal price")
}

func TestExitGrossPnl(t *testing.T) {
	m := NewCostModel(0, 0)

	// long: 10 units bought at 100, sold at 110
	long := m.Exit(110, domain.SideLong, 1000, 100)
	assert.InDelta(t, 100.0, long.GrossPnl, 1e-9)

	// short: 10 units sold at 100, bought back at 90
	short := m.Exit(90, domain.SideShort, 1000, 100)
	assert.InDelta(t, 100.0, short.GrossPnl, 1e-9)
}

func TestRoundTripAtUnchangedPriceLosesFeesAndSlippage(t *testing.T) {
	const (
		feeRate  = 0.0008
		slipRate = 0.0002
		notional = 1000.0
		price    = 250.0
	)
	m := NewCostModel(feeRate*10000, slipRate*10000)

	entry := m.Entry(price, domain.SideLong, notional)
	exit := m.Exit(price, domain.SideLong, notional, entry.FillPrice)

	net := exit.GrossPnl - exit.Fee
	total := net - entry.Fee // the entry fee was charged at open

	assert.Negative(t, total)
	// expected: -(entryFee+exitFee) - 2*notional*slipRate, with the slippage
	// term off only by the (1+slip) denominator of the exit quantity
	want := -(entry.Fee + exit.Fee) - 2*notional*slipRate
	assert.InDelta(t, want, total, 2*notional*slipRate*slipRate)
}
