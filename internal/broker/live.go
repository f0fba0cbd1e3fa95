package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/blunavi/trader/internal/order"
	"github.com/blunavi/trader/internal/utils"
)

const (
	balancePath = "/api/v1/account/balance"
	orderPath   = "/api/v1/trade/order"

	// Balances are reported per asset; the account settles in USDT even
	// though the traded instrument may be denominated differently. Kept
	// as the source venue behaves; see DESIGN.md.
	settlementCurrency = "USDT"

	// Wire precision required by the venue.
	pricePrecision = 1
	sizePrecision  = 4
)

// LiveBroker signs and submits requests to the remote trading API. A
// broker constructed without a complete credential set is permanently
// disabled: every call short-circuits with ErrNoCredentials and nothing
// is ever sent over the wire.
type LiveBroker struct {
	creds      Credentials
	client     *resty.Client
	retryDelay time.Duration
}

// LiveOption adjusts the broker's transport behavior.
type LiveOption func(*LiveBroker)

// WithHTTPClient overrides the underlying resty client (tests).
func WithHTTPClient(c *resty.Client) LiveOption {
	return func(b *LiveBroker) { b.client = c }
}

// WithRetryDelay overrides the initial balance-query retry delay.
func WithRetryDelay(d time.Duration) LiveOption {
	return func(b *LiveBroker) { b.retryDelay = d }
}

// NewLiveBroker creates a live broker against baseURL.
func NewLiveBroker(baseURL string, creds Credentials, opts ...LiveOption) *LiveBroker {
	b := &LiveBroker{
		creds: creds,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
		retryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *LiveBroker) Name() string { return "live" }

// Enabled reports whether the broker holds a complete credential set.
func (b *LiveBroker) Enabled() bool { return b.creds.Complete() }

// retry wraps a function with retry logic for transient errors, using
// exponential backoff and error logging. Used only for read-only calls.
func retry(attempts int, delay time.Duration, fn func() error) error {
	backoff := delay
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		utils.GetLogger().Printf("Broker | live retry attempt %d/%d failed: %v. Backing off for %v", i, attempts, err, backoff)
		if i == attempts {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

type balanceResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Asset     string      `json:"asset"`
		Available json.Number `json:"available"`
	} `json:"data"`
}

// QueryBalance fetches the available settlement-currency balance from
// the remote account. Read-only, so transient failures are retried with
// bounded backoff. Returns 0 when the settlement asset is absent.
func (b *LiveBroker) QueryBalance(ctx context.Context) (float64, error) {
	if !b.creds.Complete() {
		return 0, ErrNoCredentials
	}

	var parsed balanceResponse
	err := retry(3, b.retryDelay, func() error {
		params := map[string]string{
			"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
		}
		resp, err := b.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetHeaders(b.authHeaders(params)).
			Get(balancePath)
		if err != nil {
			return fmt.Errorf("fetching balance: %w", err)
		}
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("parsing balance response: %w", err)
		}
		if parsed.Code != "0" {
			return fmt.Errorf("balance query rejected: code=%s msg=%s", parsed.Code, parsed.Msg)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("QueryBalance failed: %w", err)
	}

	for _, entry := range parsed.Data {
		if entry.Asset == settlementCurrency {
			available, _ := entry.Available.Float64()
			return available, nil
		}
	}
	return 0, nil
}

type orderResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		OrdID string `json:"ordId"`
	} `json:"data"`
}

// PlaceOrder signs and submits a limit order. Price and size are rounded
// to the venue's fixed wire precision before signing. Success is decided
// by the application-level code field, not the transport status. Never
// retried: a duplicate submission risks a duplicate fill.
func (b *LiveBroker) PlaceOrder(ctx context.Context, req order.OrderRequest) (order.OrderResult, error) {
	if !b.creds.Complete() {
		return order.OrderResult{}, ErrNoCredentials
	}

	px := decimal.NewFromFloat(req.Price).Round(pricePrecision).StringFixed(pricePrecision)
	sz := decimal.NewFromFloat(req.Size).Round(sizePrecision).StringFixed(sizePrecision)
	params := map[string]string{
		"instId":    req.Symbol,
		"tdMode":    order.ModeCash,
		"side":      strings.ToLower(req.Side),
		"ordType":   "limit",
		"px":        px,
		"sz":        sz,
		"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetFormData(params).
		SetHeaders(b.authHeaders(params)).
		Post(orderPath)
	if err != nil {
		return order.OrderResult{}, fmt.Errorf("submitting order: %w", err)
	}

	raw := string(resp.Body())
	var parsed orderResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return order.OrderResult{Raw: raw}, fmt.Errorf("parsing order response: %w", err)
	}
	if parsed.Code != "0" {
		return order.OrderResult{Raw: raw}, fmt.Errorf("order rejected: code=%s msg=%s", parsed.Code, parsed.Msg)
	}

	result := order.OrderResult{
		Status:    "SUBMITTED",
		Symbol:    req.Symbol,
		Side:      strings.ToLower(req.Side),
		Price:     req.Price,
		Size:      req.Size,
		Timestamp: time.Now().UTC(),
		Raw:       raw,
	}
	if len(parsed.Data) > 0 {
		result.OrderID = parsed.Data[0].OrdID
	}
	return result, nil
}

// authHeaders builds the four signed-request headers over params.
func (b *LiveBroker) authHeaders(params map[string]string) map[string]string {
	return map[string]string{
		headerAccessKey:        b.creds.APIKey,
		headerAccessSign:       Sign(params, b.creds.APISecret),
		headerAccessTimestamp:  params["timestamp"],
		headerAccessPassphrase: b.creds.Passphrase,
	}
}
