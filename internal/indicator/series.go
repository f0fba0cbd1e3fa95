// Package indicator
package indicator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/blunavi/trader/internal/candle"
)

// Params configures the indicator set computed per evaluation.
type Params struct {
	ShortWindow int
	LongWindow  int
	RSIPeriod   int
	MACDFast    int
	MACDSlow    int
	MACDSignal  int
}

// DefaultParams returns the standard 9/21 EMA, 14 RSI, 12/26/9 MACD setup.
func DefaultParams() Params {
	return Params{
		ShortWindow: 9,
		LongWindow:  21,
		RSIPeriod:   14,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
	}
}

func (p Params) Validate() error {
	if p.ShortWindow <= 0 || p.LongWindow <= 0 || p.RSIPeriod <= 0 ||
		p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 {
		return errors.New("indicator windows must be positive")
	}
	if p.ShortWindow >= p.LongWindow {
		return errors.New("short window must be smaller than long window")
	}
	if p.MACDFast >= p.MACDSlow {
		return errors.New("MACD fast window must be smaller than slow window")
	}
	return nil
}

// WarmupPeriod returns the number of candles needed before every
// indicator in the set produces a finite value.
func (p Params) WarmupPeriod() int {
	warmup := p.LongWindow
	if p.RSIPeriod > warmup {
		warmup = p.RSIPeriod
	}
	if macdWarmup := p.MACDSlow + p.MACDSignal - 1; macdWarmup > warmup {
		warmup = macdWarmup
	}
	return warmup
}

// Snapshot holds the indicator values attached to a single candle.
type Snapshot struct {
	Time       time.Time
	ShortEMA   float64
	LongEMA    float64
	RSI        float64
	MACD       float64
	MACDSignal float64
}

// Valid reports whether the snapshot is usable for evaluation: it must
// be tied to a bar and every value must be past warm-up. A zero-value
// snapshot is never valid.
func (s Snapshot) Valid() bool {
	if s.Time.IsZero() {
		return false
	}
	for _, v := range []float64{s.ShortEMA, s.LongEMA, s.RSI, s.MACD, s.MACDSignal} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Series holds one snapshot per input candle, in candle order.
type Series struct {
	Snapshots []Snapshot
}

// At returns the snapshot at index i.
func (s Series) At(i int) Snapshot { return s.Snapshots[i] }

// Len returns the number of snapshots.
func (s Series) Len() int { return len(s.Snapshots) }

// Compute derives the full indicator set from a candle series. Each
// snapshot is tied to exactly one candle's timestamp; leading snapshots
// carry NaN values through their warm-up and report Valid() == false.
func Compute(candles []candle.Candle, p Params) (Series, error) {
	if err := p.Validate(); err != nil {
		return Series{}, err
	}
	if len(candles) == 0 {
		return Series{}, errors.New("no candles")
	}
	if !candle.IsSorted(candles) {
		return Series{}, errors.New("candles must be ordered by timestamp")
	}

	closes := candle.Closes(candles)
	shortEMA := CalculateEMA(closes, p.ShortWindow)
	longEMA := CalculateEMA(closes, p.LongWindow)
	rsi := CalculateRSI(closes, p.RSIPeriod)
	macd, signalLine := CalculateMACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)

	snapshots := make([]Snapshot, len(candles))
	for i, c := range candles {
		snapshots[i] = Snapshot{
			Time:       c.Timestamp,
			ShortEMA:   valueAt(shortEMA, i),
			LongEMA:    valueAt(longEMA, i),
			RSI:        valueAt(rsi, i),
			MACD:       valueAt(macd, i),
			MACDSignal: valueAt(signalLine, i),
		}
	}
	return Series{Snapshots: snapshots}, nil
}

// valueAt reads series[i], treating a nil series (input shorter than the
// indicator window) as still warming up.
func valueAt(series []float64, i int) float64 {
	if i >= len(series) {
		return math.NaN()
	}
	return series[i]
}

// String implements fmt.Stringer for logging.
func (s Snapshot) String() string {
	return fmt.Sprintf("short=%.2f long=%.2f rsi=%.2f macd=%.4f signal=%.4f",
		s.ShortEMA, s.LongEMA, s.RSI, s.MACD, s.MACDSignal)
}
