// Package order
package order

import "time"

// Side tokens as the broker API expects them (lowercase on the wire).
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trading modes.
const (
	ModeCash  = "cash"  // live margin-free spot trading
	ModePaper = "paper" // simulated fills, no network
)

// OrderRequest represents a new order to be submitted.
type OrderRequest struct {
	Symbol string
	Side   string // "buy" or "sell"
	Type   string // "limit"
	Price  float64
	Size   float64
	Mode   string // "cash" or "paper"
}

// OrderResult represents the outcome of a placement attempt.
type OrderResult struct {
	OrderID   string
	Status    string
	Symbol    string
	Side      string
	Price     float64
	Size      float64
	Timestamp time.Time
	Raw       string // raw diagnostic payload from the broker, when available
}
