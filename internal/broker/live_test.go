package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunavi/trader/internal/order"
)

// countingTransport counts round trips without performing any.
type countingTransport struct {
	calls atomic.Int64
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, http.ErrHandlerTimeout
}

func testClient(url string) *resty.Client {
	return resty.New().SetBaseURL(url).SetTimeout(2 * time.Second)
}

func TestLiveBrokerDisabledWithoutCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"Missing key", Credentials{APISecret: "s", Passphrase: "p"}},
		{"Missing secret", Credentials{APIKey: "k", Passphrase: "p"}},
		{"Missing passphrase", Credentials{APIKey: "k", APISecret: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &countingTransport{}
			client := resty.New().SetTransport(transport)
			b := NewLiveBroker("https://example.invalid", tt.creds, WithHTTPClient(client))

			assert.False(t, b.Enabled())

			_, err := b.QueryBalance(context.Background())
			assert.ErrorIs(t, err, ErrNoCredentials)

			_, err = b.PlaceOrder(context.Background(), order.OrderRequest{Symbol: "XAU-USDT", Side: "buy"})
			assert.ErrorIs(t, err, ErrNoCredentials)

			assert.Equal(t, int64(0), transport.calls.Load(), "disabled broker must never touch the network")
		})
	}
}

func TestLiveBrokerQueryBalance(t *testing.T) {
	creds := Credentials{APIKey: "key", APISecret: "secret", Passphrase: "phrase"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, balancePath, r.URL.Path)

		ts := r.URL.Query().Get("timestamp")
		require.NotEmpty(t, ts)

		// The four auth headers, with the signature over the query params.
		assert.Equal(t, "key", r.Header.Get("BN-ACCESS-KEY"))
		assert.Equal(t, ts, r.Header.Get("BN-ACCESS-TIMESTAMP"))
		assert.Equal(t, "phrase", r.Header.Get("BN-ACCESS-PASSPHRASE"))
		assert.Equal(t, Sign(map[string]string{"timestamp": ts}, "secret"), r.Header.Get("BN-ACCESS-SIGN"))

		w.Write([]byte(`{"code":"0","data":[{"asset":"BTC","available":"0.5"},{"asset":"USDT","available":"10000.25"}]}`))
	}))
	defer srv.Close()

	b := NewLiveBroker(srv.URL, creds, WithHTTPClient(testClient(srv.URL)))
	balance, err := b.QueryBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10000.25, balance, 1e-9)
}

func TestLiveBrokerQueryBalanceSettlementAssetAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"0","data":[{"asset":"BTC","available":"0.5"}]}`))
	}))
	defer srv.Close()

	b := NewLiveBroker(srv.URL, Credentials{"k", "s", "p"}, WithHTTPClient(testClient(srv.URL)))
	balance, err := b.QueryBalance(context.Background())
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestLiveBrokerQueryBalanceRetries(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.Write([]byte(`{"code":"50011","msg":"rate limited"}`))
			return
		}
		w.Write([]byte(`{"code":"0","data":[{"asset":"USDT","available":"42"}]}`))
	}))
	defer srv.Close()

	b := NewLiveBroker(srv.URL, Credentials{"k", "s", "p"},
		WithHTTPClient(testClient(srv.URL)), WithRetryDelay(time.Millisecond))
	balance, err := b.QueryBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 42.0, balance, 1e-9)
	assert.Equal(t, int64(3), hits.Load())
}

func TestLiveBrokerPlaceOrder(t *testing.T) {
	creds := Credentials{APIKey: "key", APISecret: "secret", Passphrase: "phrase"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, orderPath, r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "XAU-USDT", r.PostForm.Get("instId"))
		assert.Equal(t, "cash", r.PostForm.Get("tdMode"))
		assert.Equal(t, "buy", r.PostForm.Get("side"))
		assert.Equal(t, "limit", r.PostForm.Get("ordType"))
		assert.Equal(t, "2000.1", r.PostForm.Get("px"), "price rounds to 1 decimal")
		assert.Equal(t, "10.1235", r.PostForm.Get("sz"), "size rounds to 4 decimals")

		params := map[string]string{}
		for k := range r.PostForm {
			params[k] = r.PostForm.Get(k)
		}
		assert.Equal(t, Sign(params, "secret"), r.Header.Get(headerAccessSign))

		w.Write([]byte(`{"code":"0","msg":"","data":[{"ordId":"order-123"}]}`))
	}))
	defer srv.Close()

	b := NewLiveBroker(srv.URL, creds, WithHTTPClient(testClient(srv.URL)))
	res, err := b.PlaceOrder(context.Background(), order.OrderRequest{
		Symbol: "XAU-USDT",
		Side:   "BUY",
		Type:   "limit",
		Price:  2000.06,
		Size:   10.12345,
		Mode:   order.ModeCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "order-123", res.OrderID)
	assert.Equal(t, "buy", res.Side)
	assert.Equal(t, "SUBMITTED", res.Status)
}

func TestLiveBrokerPlaceOrderRejectedNotRetried(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"code":"51008","msg":"insufficient balance"}`))
	}))
	defer srv.Close()

	b := NewLiveBroker(srv.URL, Credentials{"k", "s", "p"}, WithHTTPClient(testClient(srv.URL)))
	res, err := b.PlaceOrder(context.Background(), order.OrderRequest{Symbol: "XAU-USDT", Side: "buy", Price: 2000, Size: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "51008")
	assert.Contains(t, res.Raw, "insufficient balance", "raw diagnostic payload is preserved")
	assert.Equal(t, int64(1), hits.Load(), "order placement is never retried")
}

func TestLiveBrokerPlaceOrderMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	b := NewLiveBroker(srv.URL, Credentials{"k", "s", "p"}, WithHTTPClient(testClient(srv.URL)))
	res, err := b.PlaceOrder(context.Background(), order.OrderRequest{Symbol: "XAU-USDT", Side: "buy", Price: 2000, Size: 1})
	require.Error(t, err)
	assert.Equal(t, "not json", res.Raw)
}
