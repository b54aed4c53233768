// Package metrics exposes Prometheus instrumentation for credit decisions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision service.
type Metrics struct {
	// Decision outcomes by status and risk level
	DecisionOutcome *prometheus.CounterVec

	// Requests rejected before any rule ran, by field
	InvalidInput *prometheus.CounterVec

	// Full pipeline latency
	EvaluateLatency prometheus.Histogram

	// Rows per batch upload by result
	BatchRows *prometheus.CounterVec
}

// New registers every decision metric with reg. A nil reg falls back to the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auto_credit_decision_outcomes_total",
			Help: "Total credit decisions by status and risk level",
		}, []string{"status", "risk_level"}), // risk_level is "NONE" when eligibility failed

		InvalidInput: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auto_credit_invalid_input_total",
			Help: "Total applications rejected as invalid input, by field",
		}, []string{"field"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "auto_credit_decision_evaluate_duration_seconds",
			Help:    "Duration of a full credit decision",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),

		BatchRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auto_credit_batch_rows_total",
			Help: "Total batch CSV rows by result",
		}, []string{"result"}), // result: "decided", "invalid", "failed"
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(status, riskLevel string) {
	if m != nil {
		if riskLevel == "" {
			riskLevel = "NONE"
		}
		m.DecisionOutcome.WithLabelValues(status, riskLevel).Inc()
	}
}

// IncrementInvalidInput records a rejected input field.
func (m *Metrics) IncrementInvalidInput(field string) {
	if m != nil {
		if field == "" {
			field = "unknown"
		}
		m.InvalidInput.WithLabelValues(field).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// AddBatchRows records n batch rows with the given result.
func (m *Metrics) AddBatchRows(result string, n int) {
	if m != nil && n > 0 {
		m.BatchRows.WithLabelValues(result).Add(float64(n))
	}
}
