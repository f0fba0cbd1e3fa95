// Package metrics exposes Prometheus instrumentation for the evaluation
// and execution pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the trading core.
type Metrics struct {
	EvaluationsTotal   prometheus.Counter
	SignalsTotal       prometheus.Counter
	OrdersSubmitted    prometheus.Counter
	OrdersFailed       prometheus.Counter
	OrdersRejected     prometheus.Counter
	AccountBalance     prometheus.Gauge
	EvaluationVerdicts *prometheus.CounterVec // labels: verdict
}

// New registers and returns all metrics on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_evaluations_total",
			Help: "Total signal evaluation cycles run",
		}),
		SignalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_signals_total",
			Help: "Total BUY signals emitted",
		}),
		OrdersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_orders_submitted_total",
			Help: "Orders accepted by the broker",
		}),
		OrdersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_orders_failed_total",
			Help: "Orders that failed at the broker",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_orders_rejected_total",
			Help: "Orders rejected before submission (risk sizing)",
		}),
		AccountBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trader_account_balance",
			Help: "Last observed account balance in quote currency",
		}),
		EvaluationVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trader_evaluation_verdicts_total",
			Help: "Evaluation outcomes by verdict",
		}, []string{"verdict"}),
	}
	reg.MustRegister(
		m.EvaluationsTotal,
		m.SignalsTotal,
		m.OrdersSubmitted,
		m.OrdersFailed,
		m.OrdersRejected,
		m.AccountBalance,
		m.EvaluationVerdicts,
	)
	return m
}

// NewNop returns metrics on a throwaway registry (tests).
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
