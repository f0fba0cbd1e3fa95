// Package broker abstracts order execution behind a small interface with
// paper and live implementations.
package broker

import (
	"context"
	"errors"

	"github.com/blunavi/trader/internal/order"
)

// Broker is the interface over the paper and live execution paths.
type Broker interface {
	Name() string
	// QueryBalance returns the available account balance in quote-currency
	// units. Read-only; implementations may retry transient failures.
	QueryBalance(ctx context.Context) (float64, error)
	// PlaceOrder submits an order exactly once. Implementations must not
	// retry a failed placement: the remote API does not guarantee
	// idempotency and a re-send risks a duplicate fill.
	PlaceOrder(ctx context.Context, req order.OrderRequest) (order.OrderResult, error)
}

// ErrNoCredentials is returned by a live broker constructed without a
// complete credential set. No network call is ever attempted in that state.
var ErrNoCredentials = errors.New("broker: missing API credentials")

// Credentials authenticate requests against the live trading API.
// All three fields are required; absence of any one disables the broker.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// Complete reports whether every credential field is set.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.Passphrase != ""
}
