package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EvaluatorErrorTypeScan   = "scan"
	EvaluatorErrorTypeInsert = "insert"
	EvaluatorErrorTypeFanout = "fanout"
	EvaluatorErrorTypeLease  = "lease"
)

// Config carries the constant labels stamped on every evaluator metric.
type Config struct {
	ServiceName string
	Environment string
}

// EvaluatorMetrics captures budget evaluator health signals.
type EvaluatorMetrics struct {
	runs              *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	runErrors         *prometheus.CounterVec
	leaseSkips        prometheus.Counter
	allocationsSeen   prometheus.Counter
	alertsCreated     *prometheus.CounterVec
	duplicatesSkipped *prometheus.CounterVec
	allocationErrors  prometheus.Counter
	notifications     prometheus.Counter
}

var (
	evaluatorMetricsOnce sync.Once
	evaluatorMetrics     *EvaluatorMetrics
)

// Evaluator returns the singleton evaluator metrics registry.
func Evaluator() *EvaluatorMetrics {
	return EvaluatorWithConfig(Config{})
}

// EvaluatorWithConfig returns the singleton evaluator metrics registry using config labels.
func EvaluatorWithConfig(cfg Config) *EvaluatorMetrics {
	evaluatorMetricsOnce.Do(func() {
		evaluatorMetrics = newEvaluatorMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return evaluatorMetrics
}

// ResetEvaluatorMetricsForTest resets the evaluator metrics singleton for tests.
func ResetEvaluatorMetricsForTest() {
	evaluatorMetricsOnce = sync.Once{}
	evaluatorMetrics = nil
}

func newEvaluatorMetrics(registerer prometheus.Registerer, cfg Config) *EvaluatorMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "opscore"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	factory := func(opts prometheus.Opts) prometheus.Opts {
		opts.Namespace = serviceName
		opts.ConstLabels = constLabels
		return opts
	}

	m := &EvaluatorMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "runs_total",
			Help:      "Budget evaluator runs by outcome.",
		})), []string{"outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   serviceName,
			Subsystem:   "evaluator",
			Name:        "run_duration_seconds",
			Help:        "Budget evaluator run duration.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"outcome"}),
		runErrors: prometheus.NewCounterVec(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "run_errors_total",
			Help:      "Budget evaluator errors by type.",
		})), []string{"type"}),
		leaseSkips: prometheus.NewCounter(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "lease_skips_total",
			Help:      "Runs skipped because another run holds the lease.",
		}))),
		allocationsSeen: prometheus.NewCounter(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "allocations_checked_total",
			Help:      "Live budget allocations examined.",
		}))),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "alerts_created_total",
			Help:      "Budget alerts persisted by level.",
		})), []string{"level"}),
		duplicatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "duplicates_skipped_total",
			Help:      "Alerts suppressed by the dedup window or unique index.",
		})), []string{"level"}),
		allocationErrors: prometheus.NewCounter(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "allocation_failures_total",
			Help:      "Allocations whose evaluate-and-persist step failed.",
		}))),
		notifications: prometheus.NewCounter(prometheus.CounterOpts(factory(prometheus.Opts{
			Subsystem: "evaluator",
			Name:      "notifications_created_total",
			Help:      "Notification rows inserted by the evaluator.",
		}))),
	}

	registerer.MustRegister(
		m.runs,
		m.runDuration,
		m.runErrors,
		m.leaseSkips,
		m.allocationsSeen,
		m.alertsCreated,
		m.duplicatesSkipped,
		m.allocationErrors,
		m.notifications,
	)

	return m
}

func (m *EvaluatorMetrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *EvaluatorMetrics) ObserveRunDuration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *EvaluatorMetrics) IncRunError(errType string) {
	if m == nil {
		return
	}
	m.runErrors.WithLabelValues(errType).Inc()
}

func (m *EvaluatorMetrics) IncLeaseSkip() {
	if m == nil {
		return
	}
	m.leaseSkips.Inc()
}

func (m *EvaluatorMetrics) AddAllocationsChecked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.allocationsSeen.Add(float64(n))
}

func (m *EvaluatorMetrics) IncAlertCreated(level string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(level).Inc()
}

func (m *EvaluatorMetrics) IncDuplicateSkipped(level string) {
	if m == nil {
		return
	}
	m.duplicatesSkipped.WithLabelValues(level).Inc()
}

func (m *EvaluatorMetrics) IncAllocationFailure() {
	if m == nil {
		return
	}
	m.allocationErrors.Inc()
}

func (m *EvaluatorMetrics) AddNotificationsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notifications.Add(float64(n))
}
