package calculator

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "emi_calculator"

// Metrics counts calculations by outcome and tracks how long they take.
type Metrics struct {
	calculations *prometheus.CounterVec
	irrFailures  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics creates the calculator collectors and registers them with reg.
// A nil registerer leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "calculations_total",
			Help:      "Schedule calculations by product variant and outcome.",
		}, []string{"variant", "outcome"}),
		irrFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "irr_failures_total",
			Help:      "IRR solves that produced no rate, by reason.",
		}, []string{"method", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent building a schedule and solving its IRR.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"variant"}),
	}

	if reg != nil {
		reg.MustRegister(m.calculations, m.irrFailures, m.duration)
	}
	return m
}

func (m *Metrics) observe(variant, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(variant, outcome).Inc()
	m.duration.WithLabelValues(variant).Observe(seconds)
}

func (m *Metrics) irrFailure(method, reason string) {
	if m == nil {
		return
	}
	m.irrFailures.WithLabelValues(method, reason).Inc()
}
