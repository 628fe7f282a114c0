package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncTransition("department", "approved")
	m.IncTransition("department", "approved")
	m.IncMirror("failed")
	m.IncGateRejection()
	m.ObserveMirror(30 * time.Millisecond)

	if got := testutil.ToFloat64(m.Transitions.WithLabelValues("department", "approved")); got != 2 {
		t.Fatalf("transitions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.MirrorOutcome.WithLabelValues("failed")); got != 1 {
		t.Fatalf("mirror failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GateRejections); got != 1 {
		t.Fatalf("gate rejections = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.IncTransition("x", "y")
	m.IncMirror("ok")
	m.ObserveMirror(time.Second)
	m.IncGateRejection()
}
