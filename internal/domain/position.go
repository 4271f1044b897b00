package domain

import (
	"time"

	"github.com/google/uuid"
)

// PositionSide constants
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// CloseReason constants (what triggered the close)
const (
	ReasonStopLoss   = "stop_loss"
	ReasonTakeProfit = "take_profit"
	ReasonTimeExit   = "time_exit"
)

// Position represents the single open trade. It exists only while the
// portfolio is not flat.
type Position struct {
	ID              uuid.UUID `json:"id"`
	Symbol          string    `json:"symbol"`
	Side            string    `json:"side"`
	EntryPrice      float64   `json:"entry_price"` // fill price, entry slippage included
	Size            float64   `json:"size"`        // base asset quantity
	Notional        float64   `json:"notional"`    // Size * EntryPrice at open
	StopPrice       float64   `json:"stop_price"`
	TakeProfitPrice *float64  `json:"take_profit_price,omitempty"`
	EntryFee        float64   `json:"entry_fee"` // already deducted from equity at open
	EntrySlippage   float64   `json:"entry_slippage"`
	OpenedAt        time.Time `json:"opened_at"`
	HoldCycles      int       `json:"hold_cycles"`
}

// IsLong checks if the position is a LONG position
func (p *Position) IsLong() bool {
	return p.Side == SideLong
}
