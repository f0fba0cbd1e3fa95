// Package risk turns signals into position sizes under a fixed-fraction
// risk budget.
package risk

import (
	"fmt"

	"github.com/blunavi/trader/internal/strategy"
)

// Decision is the outcome of sizing a signal against an account balance.
// It is derived entirely from its inputs; no hidden state.
type Decision struct {
	RiskAmount float64
	Size       float64
	Admitted   bool
	Reason     string
}

// Sizer converts a signal and a balance into a bounded-risk position
// size. Fraction is the share of balance allowed to be lost if the stop
// is hit (default 0.01).
type Sizer struct {
	Fraction float64
}

func NewSizer(fraction float64) *Sizer {
	return &Sizer{Fraction: fraction}
}

// Size computes the risk budget and position size for a BUY signal. The
// stop must be strictly below the entry; insufficient balance rejects
// only when balance is strictly less than the risk amount.
func (s *Sizer) Size(sig *strategy.Signal, balance float64) Decision {
	riskAmount := balance * s.Fraction

	if sig.Price <= sig.StopLoss {
		return Decision{
			RiskAmount: riskAmount,
			Reason:     fmt.Sprintf("stop loss %.2f must be below entry %.2f", sig.StopLoss, sig.Price),
		}
	}
	if balance < riskAmount {
		return Decision{
			RiskAmount: riskAmount,
			Reason:     fmt.Sprintf("insufficient balance: need %.2f, have %.2f", riskAmount, balance),
		}
	}
	return Decision{
		RiskAmount: riskAmount,
		Size:       riskAmount / (sig.Price - sig.StopLoss),
		Admitted:   true,
	}
}
