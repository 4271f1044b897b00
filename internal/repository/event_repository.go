package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pulsetrade/internal/domain"
)

// EventRepositoryImpl implements domain.EventStore on PostgreSQL. Events are
// append-only; nothing updates or deletes rows.
type EventRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) domain.EventStore {
	return &EventRepositoryImpl{db: db}
}

// Append persists one event
func (r *EventRepositoryImpl) Append(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	query := `
		INSERT INTO events (id, type, ts, payload)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.db.Exec(ctx, query,
		event.ID,
		event.Type,
		event.Timestamp,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// GetRecent retrieves the most recent events, newest first
func (r *EventRepositoryImpl) GetRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	query := `
		SELECT id, type, ts, payload
		FROM events
		ORDER BY ts DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		var payload []byte
		if err := rows.Scan(&event.ID, &event.Type, &event.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal(payload, &event.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
