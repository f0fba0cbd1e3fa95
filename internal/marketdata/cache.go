package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/blunavi/trader/internal/candle"
)

// Cache wraps a Feed with a declared time-to-live and an explicit
// invalidation call. A manual refresh invalidates only this cache; the
// downstream indicator and signal functions are pure and untouched.
type Cache struct {
	feed Feed
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	candles   []candle.Candle
	fetchedAt time.Time
}

// NewCache creates a caching feed with the given TTL.
func NewCache(feed Feed, ttl time.Duration) *Cache {
	return &Cache{feed: feed, ttl: ttl, now: time.Now}
}

// Candles returns the cached series while it is fresh, refetching from
// the underlying feed when the TTL has elapsed or after Invalidate.
func (c *Cache) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error) {
	c.mu.RLock()
	if c.candles != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		cached := c.candles
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	candles, err := c.feed.Candles(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.candles = candles
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return candles, nil
}

// Invalidate drops the cached series so the next read refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.candles = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
