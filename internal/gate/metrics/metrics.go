package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for gate evaluations.
type Metrics struct {
	// Decision outcomes by outcome and reason
	DecisionOutcome *prometheus.CounterVec

	// Outbound collaborator latencies by target
	ProviderLatency *prometheus.HistogramVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all gate metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicegate_gate_decisions_total",
			Help: "Total gate decisions by outcome and reason",
		}, []string{"outcome", "reason"}), // outcome: "allowed", "denied", "error"

		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicegate_gate_provider_duration_seconds",
			Help:    "Duration of outbound provider calls by target",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"provider"}), // provider: "entitlement", "issuer"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicegate_gate_evaluate_duration_seconds",
			Help:    "Duration of full gate evaluation including provider calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementDecision records one gate outcome.
func (m *Metrics) IncrementDecision(outcome, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(outcome, reason).Inc()
	}
}

// ObserveProviderLatency records the duration of one outbound call.
func (m *Metrics) ObserveProviderLatency(provider string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
