// Package engine runs the evaluation pipeline and executes commands
// against the broker. UI and schedulers produce command values; the
// engine returns result values for display, so the decision core stays
// decoupled from any particular front-end.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/blunavi/trader/internal/broker"
	"github.com/blunavi/trader/internal/indicator"
	"github.com/blunavi/trader/internal/journal"
	"github.com/blunavi/trader/internal/marketdata"
	"github.com/blunavi/trader/internal/metrics"
	"github.com/blunavi/trader/internal/notifier"
	"github.com/blunavi/trader/internal/order"
	"github.com/blunavi/trader/internal/position"
	"github.com/blunavi/trader/internal/risk"
	"github.com/blunavi/trader/internal/strategy"
	"github.com/blunavi/trader/internal/utils"
)

// Command identifies an engine operation.
type Command int

const (
	CmdEvaluate Command = iota
	CmdExecute
	CmdClose
	CmdRefresh
)

// Status is the user-visible outcome of a command.
type Status string

const (
	StatusNoSignal          Status = "no signal"
	StatusSignalFound       Status = "signal found"
	StatusInsufficientFunds Status = "insufficient funds"
	StatusExecuted          Status = "trade executed"
	StatusFailed            Status = "trade failed"
	StatusClosed            Status = "trade closed"
	StatusInProgress        Status = "placement in progress"
	StatusRefreshed         Status = "data refreshed"
)

// Result is the outcome of dispatching a command. Every failure path is
// reported here; the engine never panics across this API.
type Result struct {
	Status   Status
	Message  string
	Signal   *strategy.Signal
	Decision *risk.Decision
	Verdict  strategy.Verdict
	Order    *order.OrderResult
	Err      error
}

// Config carries the immutable evaluation parameters.
type Config struct {
	Symbol    string
	Timeframe string
	BarLimit  int // bars fetched per evaluation; must cover warm-up + 1
	Indicator indicator.Params
}

// Engine wires the pure pipeline (indicators, evaluator, sizer) to the
// blocking collaborators (feed cache, broker, notifier).
type Engine struct {
	cfg       Config
	cache     *marketdata.Cache
	evaluator *strategy.Evaluator
	sizer     *risk.Sizer
	broker    broker.Broker
	tracker   *position.Tracker
	journal   journal.Journaler
	metrics   *metrics.Metrics
	notifier  notifier.Notifier

	mu       sync.Mutex
	pending  *pendingTrade
	inFlight map[string]bool // single-flight guard keyed by instrument
}

type pendingTrade struct {
	signal   strategy.Signal
	decision risk.Decision
}

func New(
	cfg Config,
	cache *marketdata.Cache,
	evaluator *strategy.Evaluator,
	sizer *risk.Sizer,
	b broker.Broker,
	tracker *position.Tracker,
	jr journal.Journaler,
	m *metrics.Metrics,
	n notifier.Notifier,
) *Engine {
	return &Engine{
		cfg:       cfg,
		cache:     cache,
		evaluator: evaluator,
		sizer:     sizer,
		broker:    b,
		tracker:   tracker,
		journal:   jr,
		metrics:   m,
		notifier:  n,
		inFlight:  make(map[string]bool),
	}
}

// Dispatch executes a command and returns its result.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) Result {
	switch cmd {
	case CmdEvaluate:
		return e.evaluate(ctx)
	case CmdExecute:
		return e.execute(ctx)
	case CmdClose:
		return e.close()
	case CmdRefresh:
		return e.refresh()
	default:
		return Result{Status: StatusFailed, Err: fmt.Errorf("unknown command %d", cmd)}
	}
}

// evaluate runs one synchronous pipeline cycle: bars -> indicators ->
// signal -> sizing. The pure stages cannot block; only the feed read and
// the balance query touch I/O.
func (e *Engine) evaluate(ctx context.Context) Result {
	e.metrics.EvaluationsTotal.Inc()

	// Any evaluation that does not end in an admitted decision drops the
	// previous one: execute must never act on stale data.
	candles, err := e.cache.Candles(ctx, e.cfg.Symbol, e.cfg.Timeframe, e.cfg.BarLimit)
	if err != nil {
		e.setPending(nil)
		return Result{Status: StatusFailed, Message: "failed to fetch bars", Err: err}
	}
	valid := candles[:0:0]
	for _, c := range candles {
		if c.Validate() == nil {
			valid = append(valid, c)
		}
	}

	series, err := indicator.Compute(valid, e.cfg.Indicator)
	if err != nil {
		e.setPending(nil)
		return Result{Status: StatusNoSignal, Message: "indicators unavailable", Verdict: strategy.VerdictInsufficientData, Err: err}
	}

	sig, verdict := e.evaluator.Evaluate(valid, series)
	e.metrics.EvaluationVerdicts.WithLabelValues(verdict.String()).Inc()
	if sig == nil {
		e.setPending(nil)
		return Result{Status: StatusNoSignal, Message: verdict.String(), Verdict: verdict}
	}
	e.metrics.SignalsTotal.Inc()
	e.journal.LogEvent(journal.Event{
		Type:        "signal",
		Description: fmt.Sprintf("%s %s @ %.1f", sig.Action, e.cfg.Symbol, sig.Price),
		Data:        map[string]any{"confidence": sig.Confidence, "sl": sig.StopLoss, "tp": sig.TakeProfit},
	})

	balance, err := e.broker.QueryBalance(ctx)
	if err != nil {
		e.setPending(nil)
		return Result{Status: StatusFailed, Message: "balance query failed", Signal: sig, Err: err}
	}
	e.metrics.AccountBalance.Set(balance)

	decision := e.sizer.Size(sig, balance)
	if !decision.Admitted {
		e.metrics.OrdersRejected.Inc()
		e.journal.LogEvent(journal.Event{Type: "rejection", Description: decision.Reason})
		e.setPending(nil)
		return Result{Status: StatusInsufficientFunds, Message: decision.Reason, Signal: sig, Decision: &decision}
	}

	e.setPending(&pendingTrade{signal: *sig, decision: decision})
	return Result{
		Status:   StatusSignalFound,
		Message:  fmt.Sprintf("%s @ %.1f (confidence %.0f%%, risk %.0f)", sig.Action, sig.Price, sig.Confidence*100, decision.RiskAmount),
		Signal:   sig,
		Decision: &decision,
	}
}

// execute places the order for the last admitted decision. Placements
// for the same instrument are serialized: a concurrent execute returns
// StatusInProgress instead of queuing, and a failed placement is never
// retried here.
func (e *Engine) execute(ctx context.Context) Result {
	e.mu.Lock()
	pending := e.pending
	if pending == nil {
		e.mu.Unlock()
		return Result{Status: StatusNoSignal, Message: "nothing to execute"}
	}
	if e.inFlight[e.cfg.Symbol] {
		e.mu.Unlock()
		return Result{Status: StatusInProgress, Message: "order placement already in progress"}
	}
	e.inFlight[e.cfg.Symbol] = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.inFlight, e.cfg.Symbol)
		e.mu.Unlock()
	}()

	if state := e.tracker.StateOf(e.cfg.Symbol); state == position.StateOpen {
		return Result{Status: StatusFailed, Message: "position already open", Err: position.ErrAlreadyOpen}
	}

	req := order.OrderRequest{
		Symbol: e.cfg.Symbol,
		Side:   order.SideBuy,
		Type:   "limit",
		Price:  pending.signal.Price,
		Size:   pending.decision.Size,
		Mode:   e.mode(),
	}
	res, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		e.metrics.OrdersFailed.Inc()
		e.journal.LogEvent(journal.Event{Type: "error", Description: err.Error(), Data: map[string]any{"raw": res.Raw}})
		e.notifier.Notify(fmt.Sprintf("Trade failed: %s %s @ %.1f: %v", req.Side, req.Symbol, req.Price, err))
		return Result{Status: StatusFailed, Message: "order placement failed", Order: &res, Err: err}
	}

	e.metrics.OrdersSubmitted.Inc()
	if err := e.tracker.Open(position.Position{
		Symbol:     req.Symbol,
		Entry:      req.Price,
		Size:       req.Size,
		StopLoss:   pending.signal.StopLoss,
		TakeProfit: pending.signal.TakeProfit,
	}); err != nil {
		utils.GetLogger().Printf("Engine | failed to track position: %v", err)
	}
	e.journal.LogEvent(journal.Event{
		Type:        "order",
		Description: fmt.Sprintf("%s %s %.4f @ %.1f", req.Side, req.Symbol, req.Size, req.Price),
		Data:        map[string]any{"order_id": res.OrderID},
	})
	e.notifier.Notify(fmt.Sprintf("Trade opened: %s %s %.4f @ %.1f (SL %.1f, TP %.1f)",
		req.Side, req.Symbol, req.Size, req.Price, pending.signal.StopLoss, pending.signal.TakeProfit))
	e.setPending(nil)
	return Result{Status: StatusExecuted, Message: "trade opened", Order: &res}
}

// close transitions the tracked position to CLOSED. Closing on the venue
// is an explicit user action in this design; the engine only updates the
// tracker and reports.
func (e *Engine) close() Result {
	pos, err := e.tracker.Close(e.cfg.Symbol)
	if err != nil {
		return Result{Status: StatusFailed, Message: "no open position", Err: err}
	}
	e.journal.LogEvent(journal.Event{
		Type:        "order",
		Description: fmt.Sprintf("closed %s %.4f opened @ %.1f", pos.Symbol, pos.Size, pos.Entry),
	})
	e.notifier.Notify(fmt.Sprintf("Trade closed manually: %s @ %.1f", pos.Symbol, pos.Entry))
	return Result{Status: StatusClosed, Message: "trade closed manually"}
}

// refresh invalidates only the upstream bar cache. Pure stages have no
// state to clear.
func (e *Engine) refresh() Result {
	e.cache.Invalidate()
	return Result{Status: StatusRefreshed, Message: "bar cache invalidated"}
}

func (e *Engine) setPending(p *pendingTrade) {
	e.mu.Lock()
	e.pending = p
	e.mu.Unlock()
}

func (e *Engine) mode() string {
	if e.broker.Name() == "paper" {
		return order.ModePaper
	}
	return order.ModeCash
}
