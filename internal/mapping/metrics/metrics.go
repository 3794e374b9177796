package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the mapping module.
type Metrics struct {
	// Reference-data lookup latencies by source
	LookupLatency *prometheus.HistogramVec

	// Identity fallbacks by field
	Fallbacks *prometheus.CounterVec

	// Build outcomes by result
	BuildOutcome *prometheus.CounterVec

	// Overall build latency
	BuildLatency prometheus.Histogram
}

// New creates a Metrics instance registered with reg. Pass nil to use the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casebridge_mapping_lookup_duration_seconds",
			Help:    "Duration of reference-data lookups by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}),

		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casebridge_mapping_identity_fallbacks_total",
			Help: "Optional lookups resolved through the identity fallback, by field",
		}, []string{"field"}),

		BuildOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casebridge_mapping_builds_total",
			Help: "Mapping context builds by result",
		}, []string{"result"}),

		BuildLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "casebridge_mapping_build_duration_seconds",
			Help:    "Duration of a full mapping context build",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveLookupLatency records the duration of one reference-data lookup.
func (m *Metrics) ObserveLookupLatency(source string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementFallback records an identity fallback for field.
func (m *Metrics) IncrementFallback(field string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(field).Inc()
	}
}

// IncrementOutcome records a build result ("built", "reference_data_missing", ...).
func (m *Metrics) IncrementOutcome(result string) {
	if m != nil {
		m.BuildOutcome.WithLabelValues(result).Inc()
	}
}

// ObserveBuildLatency records the total build duration.
func (m *Metrics) ObserveBuildLatency(d time.Duration) {
	if m != nil {
		m.BuildLatency.Observe(d.Seconds())
	}
}
