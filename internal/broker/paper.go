package broker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/blunavi/trader/internal/order"
)

// PaperBroker simulates execution against a fixed balance. It never
// talks to a network: every placement succeeds synchronously, echoing
// the request.
type PaperBroker struct {
	balance  float64
	orderSeq atomic.Int64
}

// NewPaperBroker creates a paper broker holding the configured simulated
// balance.
func NewPaperBroker(balance float64) *PaperBroker {
	return &PaperBroker{balance: balance}
}

func (p *PaperBroker) Name() string { return "paper" }

func (p *PaperBroker) QueryBalance(ctx context.Context) (float64, error) {
	return p.balance, nil
}

func (p *PaperBroker) PlaceOrder(ctx context.Context, req order.OrderRequest) (order.OrderResult, error) {
	seq := p.orderSeq.Add(1)
	return order.OrderResult{
		OrderID:   fmt.Sprintf("paper-%d", seq),
		Status:    "FILLED",
		Symbol:    req.Symbol,
		Side:      req.Side,
		Price:     req.Price,
		Size:      req.Size,
		Timestamp: time.Now().UTC(),
	}, nil
}
