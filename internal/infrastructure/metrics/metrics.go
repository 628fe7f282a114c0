package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides observability for the proposal workflow.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	MirrorOutcome  *prometheus.CounterVec
	MirrorDuration prometheus.Histogram
	GateRejections prometheus.Counter
}

// New registers the workflow metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankeu_transitions_total",
			Help: "Applied workflow transitions by authority and decision",
		}, []string{"authority", "decision"}),
		MirrorOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankeu_mirror_outcomes_total",
			Help: "Reference mirror attempts by outcome",
		}, []string{"outcome"}), // ok, failed, skipped
		MirrorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankeu_mirror_duration_seconds",
			Help:    "Duration of reference mirror copies",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GateRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankeu_submission_gate_rejections_total",
			Help: "Submit or resubmit calls refused because submission is closed",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.MirrorOutcome, m.MirrorDuration, m.GateRejections)
	}
	return m
}

func (m *Metrics) IncTransition(authority, decision string) {
	if m != nil {
		m.Transitions.WithLabelValues(authority, decision).Inc()
	}
}

func (m *Metrics) IncMirror(outcome string) {
	if m != nil {
		m.MirrorOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveMirror(d time.Duration) {
	if m != nil {
		m.MirrorDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncGateRejection() {
	if m != nil {
		m.GateRejections.Inc()
	}
}
