// Package strategy
package strategy

import (
	"time"

	"github.com/blunavi/trader/internal/candle"
	"github.com/blunavi/trader/internal/indicator"
)

// Action is the direction of a trade signal. Only BUY is ever produced;
// the strategy is long-only.
type Action string

const ActionBuy Action = "BUY"

// Signal is an immutable trade signal produced by one evaluation cycle.
type Signal struct {
	Action     Action
	Price      float64 // entry at the current bar's close
	StopLoss   float64
	TakeProfit float64
	Confidence float64 // in [0,1]
	Time       time.Time
}

// Verdict explains why an evaluation produced no signal. It exists for
// logging and tests; callers branch on signal nil-ness only.
type Verdict int

const (
	VerdictSignal Verdict = iota
	VerdictInsufficientData
	VerdictOutsideWindow
	VerdictLowScore
)

func (v Verdict) String() string {
	switch v {
	case VerdictSignal:
		return "signal"
	case VerdictInsufficientData:
		return "insufficient data"
	case VerdictOutsideWindow:
		return "outside trading window"
	case VerdictLowScore:
		return "no qualifying score"
	default:
		return "unknown"
	}
}

// Condition weights. The crossover is mandatory: 1.0 alone never reaches
// the threshold, so a signal requires all three conditions.
const (
	weightCrossover = 1.0
	weightMomentum  = 0.5
	weightMACD      = 0.5

	scoreThreshold = 2.0
	maxScore       = weightCrossover + weightMomentum + weightMACD
)

// Stop distance is a single-bar range proxy for volatility; the target
// is a fixed 2.5:1 reward:risk multiple of it.
const (
	stopRangeMultiple = 1.5
	rewardRiskRatio   = 2.5
)

// Evaluator derives at most one BUY signal per evaluation from the two
// most recent bars and their indicator snapshots, gated by the trading
// window.
type Evaluator struct {
	openHour  int
	closeHour int
}

// NewEvaluator creates an evaluator gated to [openHour, closeHour], both
// ends inclusive, in the bar's local time.
func NewEvaluator(openHour, closeHour int) *Evaluator {
	return &Evaluator{openHour: openHour, closeHour: closeHour}
}

// InWindow reports whether t's local hour falls inside the trading window.
func (e *Evaluator) InWindow(t time.Time) bool {
	hour := t.Hour()
	return hour >= e.openHour && hour <= e.closeHour
}

// Evaluate inspects the last two candles and snapshots and returns a
// signal, or nil with a verdict describing why none was emitted. The
// window gate is evaluated first and overrides any indicator state.
// Evaluation is pure: identical inputs yield identical output.
func (e *Evaluator) Evaluate(candles []candle.Candle, series indicator.Series) (*Signal, Verdict) {
	if len(candles) < 2 || series.Len() < 2 || series.Len() != len(candles) {
		return nil, VerdictInsufficientData
	}

	cur := candles[len(candles)-1]
	if !e.InWindow(cur.Timestamp) {
		return nil, VerdictOutsideWindow
	}

	curSnap := series.At(series.Len() - 1)
	prevSnap := series.At(series.Len() - 2)
	if !curSnap.Valid() || !prevSnap.Valid() {
		return nil, VerdictInsufficientData
	}

	var score float64
	crossedUp := curSnap.ShortEMA > curSnap.LongEMA && prevSnap.ShortEMA <= prevSnap.LongEMA
	if crossedUp {
		score += weightCrossover
	}
	if curSnap.RSI > 30 && curSnap.RSI < 70 {
		score += weightMomentum
	}
	if curSnap.MACD > curSnap.MACDSignal && curSnap.MACD > 0 {
		score += weightMACD
	}
	if score < scoreThreshold {
		return nil, VerdictLowScore
	}

	stop := cur.Close - (cur.High-cur.Low)*stopRangeMultiple
	target := cur.Close + (cur.Close-stop)*rewardRiskRatio
	return &Signal{
		Action:     ActionBuy,
		Price:      cur.Close,
		StopLoss:   stop,
		TakeProfit: target,
		Confidence: score / maxScore,
		Time:       cur.Timestamp,
	}, VerdictSignal
}
