package recalc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for recalculation passes.
type Metrics struct {
	// Pass durations, successful or not
	PassDuration prometheus.Histogram

	// Passes by trigger and outcome
	Passes *prometheus.CounterVec

	// Triggers dropped because a pass was already running
	BusyRejections prometheus.Counter

	// Per-step entity counters
	EntitiesUpdated *prometheus.CounterVec
	EntitiesSkipped *prometheus.CounterVec
}

// NewMetrics registers the recalculation metrics on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pilotage_recalc_pass_duration_seconds",
			Help:    "Duration of full recalculation passes",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		Passes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pilotage_recalc_passes_total",
			Help: "Total recalculation passes by trigger and outcome",
		}, []string{"trigger", "outcome"}), // outcome: "ok", "partial"

		BusyRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "pilotage_recalc_busy_rejections_total",
			Help: "Triggers ignored because a pass was already running",
		}),

		EntitiesUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pilotage_recalc_entities_updated_total",
			Help: "Entities written by recalculation, by step",
		}, []string{"step"}),

		EntitiesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pilotage_recalc_entities_skipped_total",
			Help: "Entities or steps skipped after a failure, by step",
		}, []string{"step"}),
	}
}

// ObservePass records one finished pass.
func (m *Metrics) ObservePass(e PassEvent) {
	if m == nil {
		return
	}
	outcome := "ok"
	if e.Failed() {
		outcome = "partial"
	}
	m.PassDuration.Observe(e.Duration.Seconds())
	m.Passes.WithLabelValues(string(e.Trigger), outcome).Inc()
	for _, s := range e.Steps {
		if s.Updated > 0 {
			m.EntitiesUpdated.WithLabelValues(s.Name).Add(float64(s.Updated))
		}
		if s.Skipped > 0 {
			m.EntitiesSkipped.WithLabelValues(s.Name).Add(float64(s.Skipped))
		}
	}
}

// IncrementBusy records a rejected trigger.
func (m *Metrics) IncrementBusy() {
	if m != nil {
		m.BusyRejections.Inc()
	}
}
