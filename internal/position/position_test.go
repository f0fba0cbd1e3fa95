package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateNone, tr.StateOf("XAU-USDT"))

	err := tr.Open(Position{Symbol: "XAU-USDT", Entry: 2010, Size: 10, StopLoss: 1995, TakeProfit: 2047.5})
	require.NoError(t, err)
	assert.Equal(t, StateOpen, tr.StateOf("XAU-USDT"))

	pos, ok := tr.Get("XAU-USDT")
	require.True(t, ok)
	assert.Equal(t, 2010.0, pos.Entry)
	assert.False(t, pos.OpenedAt.IsZero())

	closed, err := tr.Close("XAU-USDT")
	require.NoError(t, err)
	assert.Equal(t, StateClosed, closed.State)
	assert.False(t, closed.ClosedAt.IsZero())
	assert.Equal(t, StateClosed, tr.StateOf("XAU-USDT"))
}

func TestTrackerRejectsSecondOpen(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Open(Position{Symbol: "XAU-USDT", Entry: 2010}))

	err := tr.Open(Position{Symbol: "XAU-USDT", Entry: 2020})
	assert.ErrorIs(t, err, ErrAlreadyOpen)

	// After closing, a new position may open again.
	_, err = tr.Close("XAU-USDT")
	require.NoError(t, err)
	assert.NoError(t, tr.Open(Position{Symbol: "XAU-USDT", Entry: 2030}))
}

func TestTrackerCloseWithoutOpen(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Close("XAU-USDT")
	assert.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, tr.Open(Position{Symbol: "XAU-USDT"}))
	_, err = tr.Close("XAU-USDT")
	require.NoError(t, err)

	_, err = tr.Close("XAU-USDT")
	assert.ErrorIs(t, err, ErrNotOpen, "closed position cannot close again")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "NONE", StateNone.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
}
