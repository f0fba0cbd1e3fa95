package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/blunavi/trader/internal/candle"
)

const candlesPath = "/api/v1/market/candles"

// HTTPFeed fetches bars from the venue's public market-data endpoint.
// Rows arrive newest-first as [ts, open, high, low, close] string
// tuples; the feed reverses them into timestamp order and drops rows
// that fail validation.
type HTTPFeed struct {
	client *resty.Client
	loc    *time.Location
}

// NewHTTPFeed creates a feed against baseURL. Bar timestamps are
// rendered in loc so the evaluator reads hour-of-day in the venue's
// local time; nil means UTC.
func NewHTTPFeed(baseURL string, loc *time.Location) *HTTPFeed {
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPFeed{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
		loc: loc,
	}
}

// WithClient overrides the HTTP client (tests).
func (f *HTTPFeed) WithClient(c *resty.Client) *HTTPFeed {
	f.client = c
	return f
}

type candlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

func (f *HTTPFeed) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"instId": symbol,
			"bar":    timeframe,
			"limit":  strconv.Itoa(limit),
		}).
		Get(candlesPath)
	if err != nil {
		return nil, fmt.Errorf("fetching candles: %w", err)
	}

	var parsed candlesResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parsing candles response: %w", err)
	}
	if parsed.Code != "0" {
		return nil, fmt.Errorf("candles query rejected: code=%s msg=%s", parsed.Code, parsed.Msg)
	}

	candles := make([]candle.Candle, 0, len(parsed.Data))
	for i := len(parsed.Data) - 1; i >= 0; i-- {
		row := parsed.Data[i]
		if len(row) < 5 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		open, _ := strconv.ParseFloat(row[1], 64)
		high, _ := strconv.ParseFloat(row[2], 64)
		low, _ := strconv.ParseFloat(row[3], 64)
		closePx, _ := strconv.ParseFloat(row[4], 64)

		c := candle.Candle{
			Timestamp: time.UnixMilli(ts).In(f.loc),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			Symbol:    symbol,
			Timeframe: timeframe,
		}
		if err := c.Validate(); err != nil {
			continue // skip invalid candles
		}
		candles = append(candles, c)
	}
	return candles, nil
}
