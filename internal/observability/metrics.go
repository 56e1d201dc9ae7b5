package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gateway"

// Outcomes of the authentication pipeline
const (
	OutcomePreflight     = "preflight"
	OutcomeBypass        = "bypass"
	OutcomeForwarded     = "forwarded"
	OutcomeForwardedAnon = "forwarded_anonymous"
	OutcomeRejected      = "rejected"
)

// Metrics collects authentication decision metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	decisions  *prometheus.CounterVec
	validation *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		// outcome: preflight | bypass | forwarded | forwarded_anonymous | rejected
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "decisions_total",
				Help:      "Authentication decisions by path class and outcome.",
			},
			[]string{"path_class", "outcome"},
		),
		validation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "validation_duration_seconds",
				Help:      "Duration of calls to the authentication service by result.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.decisions, m.validation} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordDecision counts one pipeline outcome
func (m *Metrics) RecordDecision(pathClass, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(pathClass, outcome).Inc()
}

// RecordValidation observes one call to the authentication service.
// result is "ok" or the failure kind.
func (m *Metrics) RecordValidation(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.validation.WithLabelValues(result).Observe(elapsed.Seconds())
}
