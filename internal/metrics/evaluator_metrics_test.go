package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEvaluatorCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newEvaluatorMetrics(registry, Config{
		ServiceName: "opscore",
		Environment: "test",
	})

	m.IncRun("ok")
	m.IncRun("ok")
	m.IncAlertCreated("warning")
	m.IncDuplicateSkipped("critical")
	m.AddAllocationsChecked(5)
	m.AddNotificationsCreated(3)
	m.IncAllocationFailure()
	m.IncLeaseSkip()
	m.IncRunError(EvaluatorErrorTypeScan)
	m.ObserveRunDuration("ok", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.alertsCreated.WithLabelValues("warning")); got != 1 {
		t.Fatalf("expected 1 warning alert, got %v", got)
	}
	if got := testutil.ToFloat64(m.duplicatesSkipped.WithLabelValues("critical")); got != 1 {
		t.Fatalf("expected 1 duplicate skip, got %v", got)
	}
	if got := testutil.ToFloat64(m.allocationsSeen); got != 5 {
		t.Fatalf("expected 5 allocations checked, got %v", got)
	}
	if got := testutil.ToFloat64(m.notifications); got != 3 {
		t.Fatalf("expected 3 notifications, got %v", got)
	}
	if got := testutil.ToFloat64(m.runErrors.WithLabelValues(EvaluatorErrorTypeScan)); got != 1 {
		t.Fatalf("expected 1 scan error, got %v", got)
	}
}

func TestEvaluatorNilSafe(t *testing.T) {
	var m *EvaluatorMetrics

	// No-ops rather than panics before the singleton exists.
	m.IncRun("ok")
	m.IncRunError(EvaluatorErrorTypeLease)
	m.IncLeaseSkip()
	m.AddAllocationsChecked(1)
	m.IncAlertCreated("warning")
	m.IncDuplicateSkipped("warning")
	m.IncAllocationFailure()
	m.AddNotificationsCreated(1)
	m.ObserveRunDuration("ok", time.Second)
}

func TestEvaluatorNonPositiveAddsIgnored(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newEvaluatorMetrics(registry, Config{ServiceName: "opscore", Environment: "test"})

	m.AddAllocationsChecked(0)
	m.AddAllocationsChecked(-3)
	m.AddNotificationsCreated(0)

	if got := testutil.ToFloat64(m.allocationsSeen); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.notifications); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
