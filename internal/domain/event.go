package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event type constants
const (
	EventStartup           = "startup"
	EventConfigWarning     = "config_warning"
	EventDayRollover       = "day_rollover"
	EventDailyLossLimitHit = "daily_loss_limit_hit"
	EventMarketDataError   = "marketdata_error"
	EventTick              = "tick"
	EventStrategyState     = "strategy_state"
	EventEntrySkipped      = "entry_skipped"
	EventPositionOpened    = "position_opened"
	EventPositionClosed    = "position_closed"
)

// Event is one append-only engine record: a flat field-value payload with a
// type and timestamp.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"ts"`
	Fields    map[string]any `json:"fields"`
}

// NewEvent builds an event stamped with the current UTC time
func NewEvent(eventType string, fields map[string]any) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
}

// EventSink defines the append-only interface the engine writes through
type EventSink interface {
	Append(ctx context.Context, event Event) error
}

// EventStore extends EventSink with the read side used by the status API
type EventStore interface {
	EventSink
	GetRecent(ctx context.Context, limit int) ([]Event, error)
}
