// Package marketdata defines the bar-feed boundary. Fetching, rate
// limiting and venue specifics live behind the Feed interface; the core
// only requires that the series be periodically refreshable.
package marketdata

import (
	"context"

	"github.com/blunavi/trader/internal/candle"
)

// Feed supplies an ordered bar series for a symbol and timeframe. The
// most recent (possibly still-forming) bar is last.
type Feed interface {
	Candles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error)
}
