package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pulsetrade/internal/domain"
)

const fileSinkMemory = 256

// FileEventSink appends events as JSON lines to a log file. It keeps a small
// in-memory ring of recent events so the status API works without a
// database.
type FileEventSink struct {
	mu     sync.Mutex
	file   *os.File
	recent []domain.Event
	next   int
	filled bool
}

// NewFileEventSink opens (or creates) the log file for appending
func NewFileEventSink(path string) (*FileEventSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create event log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &FileEventSink{
		file:   f,
		recent: make([]domain.Event, fileSinkMemory),
	}, nil
}

// Append writes one event as a JSON line
func (s *FileEventSink) Append(ctx context.Context, event domain.Event) error {
	line := map[string]any{
		"id":   event.ID,
		"type": event.Type,
		"ts":   event.Timestamp,
	}
	for k, v := range event.Fields {
		line[k] = v
	}
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	s.recent[s.next] = event
	s.next = (s.next + 1) % len(s.recent)
	if s.next == 0 {
		s.filled = true
	}
	return nil
}

// GetRecent returns up to limit of the most recent events, newest first
func (s *FileEventSink) GetRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.next
	if s.filled {
		size = len(s.recent)
	}
	if limit > size {
		limit = size
	}
	events := make([]domain.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.recent)) % len(s.recent)
		events = append(events, s.recent[idx])
	}
	return events, nil
}

// Close closes the underlying file
func (s *FileEventSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
