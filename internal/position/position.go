// Package position
package position

import (
	"errors"
	"sync"
	"time"
)

// State of the single tracked position per instrument.
type State int

const (
	StateNone State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrAlreadyOpen = errors.New("position: already open for instrument")
	ErrNotOpen     = errors.New("position: no open position for instrument")
)

// Position records the single in-flight trade for an instrument.
type Position struct {
	Symbol     string
	Entry      float64
	Size       float64
	StopLoss   float64
	TakeProfit float64
	OpenedAt   time.Time
	ClosedAt   time.Time
	State      State
}

// Tracker keeps at most one open position per instrument. Transitions:
// NONE -> OPEN via a successful order placement, OPEN -> CLOSED via an
// explicit close. In-memory only; nothing survives a restart.
type Tracker struct {
	mu        sync.Mutex
	positions map[string]*Position
}

func NewTracker() *Tracker {
	return &Tracker{positions: make(map[string]*Position)}
}

// Open records a filled order as an open position. Rejects when a
// position is already open for the instrument.
func (t *Tracker) Open(p Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.positions[p.Symbol]; ok && cur.State == StateOpen {
		return ErrAlreadyOpen
	}
	p.State = StateOpen
	if p.OpenedAt.IsZero() {
		p.OpenedAt = time.Now().UTC()
	}
	t.positions[p.Symbol] = &p
	return nil
}

// Close transitions the instrument's open position to CLOSED.
func (t *Tracker) Close(symbol string) (Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.positions[symbol]
	if !ok || cur.State != StateOpen {
		return Position{}, ErrNotOpen
	}
	cur.State = StateClosed
	cur.ClosedAt = time.Now().UTC()
	return *cur, nil
}

// Get returns the tracked position for an instrument, if any.
func (t *Tracker) Get(symbol string) (Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *cur, true
}

// StateOf returns the current state for an instrument (NONE when the
// instrument was never traded).
func (t *Tracker) StateOf(symbol string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.positions[symbol]; ok {
		return cur.State
	}
	return StateNone
}
