package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunavi/trader/internal/order"
)

func TestPaperBrokerBalance(t *testing.T) {
	b := NewPaperBroker(10000)
	assert.Equal(t, "paper", b.Name())

	balance, err := b.QueryBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)
}

func TestPaperBrokerPlaceOrderEchoesRequest(t *testing.T) {
	b := NewPaperBroker(10000)
	req := order.OrderRequest{
		Symbol: "XAU-USDT",
		Side:   order.SideBuy,
		Type:   "limit",
		Price:  2010.5,
		Size:   10,
		Mode:   order.ModePaper,
	}

	res, err := b.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "FILLED", res.Status)
	assert.Equal(t, req.Price, res.Price)
	assert.Equal(t, req.Size, res.Size)
	assert.Equal(t, req.Symbol, res.Symbol)
	assert.NotEmpty(t, res.OrderID)

	// Order IDs are unique per placement.
	res2, err := b.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, res.OrderID, res2.OrderID)
}
