package journal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJournal(t *testing.T) {
	j := NewMemory(10)
	j.LogEvent(Event{Type: "signal", Description: "BUY @ 2010"})
	j.LogEvent(Event{Type: "order", Description: "buy 10 @ 2010"})
	j.LogEvent(Event{Type: "signal", Description: "BUY @ 2020"})

	signals := j.Events("signal")
	require.Len(t, signals, 2)
	assert.Equal(t, "BUY @ 2010", signals[0].Description)
	assert.False(t, signals[0].Time.IsZero(), "time is stamped when absent")

	assert.Len(t, j.Events(""), 3)
	assert.Empty(t, j.Events("rejection"))
}

func TestMemoryJournalBounded(t *testing.T) {
	j := NewMemory(5)
	for i := 0; i < 12; i++ {
		j.LogEvent(Event{Type: "order", Description: fmt.Sprintf("event %d", i)})
	}
	events := j.Events("")
	require.Len(t, events, 5)
	assert.Equal(t, "event 7", events[0].Description, "oldest events are dropped first")
	assert.Equal(t, "event 11", events[4].Description)
}
