package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunavi/trader/internal/candle"
)

type fakeFeed struct {
	fetches int
	candles []candle.Candle
	err     error
}

func (f *fakeFeed) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error) {
	f.fetches++
	return f.candles, f.err
}

func someCandles(n int) []candle.Candle {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	out := make([]candle.Candle, n)
	for i := range out {
		out[i] = candle.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      2000, High: 2010, Low: 1995, Close: 2005,
			Symbol: "XAU-USDT", Timeframe: "1h",
		}
	}
	return out
}

func TestCacheServesWithinTTL(t *testing.T) {
	feed := &fakeFeed{candles: someCandles(3)}
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	c := NewCache(feed, time.Minute)
	c.now = func() time.Time { return now }

	first, err := c.Candles(context.Background(), "XAU-USDT", "1h", 3)
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, 1, feed.fetches)

	// Within TTL: served from cache.
	now = now.Add(30 * time.Second)
	_, err = c.Candles(context.Background(), "XAU-USDT", "1h", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.fetches)

	// Past TTL: refetched.
	now = now.Add(31 * time.Second)
	_, err = c.Candles(context.Background(), "XAU-USDT", "1h", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.fetches)
}

func TestCacheInvalidate(t *testing.T) {
	feed := &fakeFeed{candles: someCandles(2)}
	c := NewCache(feed, time.Hour)

	_, err := c.Candles(context.Background(), "XAU-USDT", "1h", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.fetches)

	c.Invalidate()
	_, err = c.Candles(context.Background(), "XAU-USDT", "1h", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.fetches, "invalidation forces a refetch before the TTL elapses")
}

func TestCachePropagatesFeedErrors(t *testing.T) {
	feed := &fakeFeed{err: assert.AnError}
	c := NewCache(feed, time.Minute)

	_, err := c.Candles(context.Background(), "XAU-USDT", "1h", 2)
	assert.ErrorIs(t, err, assert.AnError)

	// A failed fetch is not cached.
	feed.err = nil
	feed.candles = someCandles(1)
	out, err := c.Candles(context.Background(), "XAU-USDT", "1h", 2)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
