// Package journal
package journal

import (
	"sync"
	"time"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time
	Type        string // e.g., "signal", "order", "rejection", "error"
	Description string
	Data        map[string]any
}

// Journaler interface for journaling events.
type Journaler interface {
	LogEvent(event Event)
	Events(eventType string) []Event
}

// Memory is a bounded in-memory journal. Trade history is not persisted
// across restarts; the journal exists for the running session only.
type Memory struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemory creates an in-memory journal keeping at most limit events.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 1000
	}
	return &Memory{limit: limit}
}

func (m *Memory) LogEvent(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if len(m.events) > m.limit {
		m.events = m.events[len(m.events)-m.limit:]
	}
}

// Events returns journaled events of the given type; all events when
// eventType is empty.
func (m *Memory) Events(eventType string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
