package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/payrollrecon/internal/config"
)

// Metrics exposes the payroll domain instruments.
type Metrics struct {
	reportsGenerated prometheus.Counter
	batchesSaved     prometheus.Counter
	paymentToggles   *prometheus.CounterVec
	reconcileRepairs *prometheus.CounterVec
	overdueAccounts  prometheus.Gauge
	jobRuns          *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
}

// New registers the domain collectors on the default registry.
func New(cfg config.Config) (*Metrics, error) {
	return NewWithRegisterer(prometheus.DefaultRegisterer, cfg)
}

// NewWithRegisterer registers the domain collectors on registerer.
func NewWithRegisterer(registerer prometheus.Registerer, cfg config.Config) (*Metrics, error) {
	constLabels := constLabelsFor(cfg)

	m := &Metrics{
		reportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payroll_reports_generated_total",
			Help:        "Payroll reports generated from uploaded feeds.",
			ConstLabels: constLabels,
		}),
		batchesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payroll_batches_saved_total",
			Help:        "Payroll report batches persisted.",
			ConstLabels: constLabels,
		}),
		paymentToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payroll_payment_toggles_total",
			Help:        "Manual paid-flag toggles by dimension and level.",
			ConstLabels: constLabels,
		}, []string{"dimension", "level"}),
		reconcileRepairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payroll_reconcile_repairs_total",
			Help:        "Line paid flags repaired by auto-reconcile.",
			ConstLabels: constLabels,
		}, []string{"dimension"}),
		overdueAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "payroll_overdue_accounts",
			Help:        "White glove accounts with an unpaid backend past the overdue threshold.",
			ConstLabels: constLabels,
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payroll_job_runs_total",
			Help:        "Scheduled job runs by name and outcome.",
			ConstLabels: constLabels,
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "payroll_job_duration_seconds",
			Help:        "Scheduled job latency.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			ConstLabels: constLabels,
		}, []string{"job"}),
	}

	for _, collector := range []prometheus.Collector{
		m.reportsGenerated,
		m.batchesSaved,
		m.paymentToggles,
		m.reconcileRepairs,
		m.overdueAccounts,
		m.jobRuns,
		m.jobDuration,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordReportGenerated() {
	if m == nil {
		return
	}
	m.reportsGenerated.Inc()
}

func (m *Metrics) RecordBatchSaved() {
	if m == nil {
		return
	}
	m.batchesSaved.Inc()
}

// RecordPaymentToggle counts a manual toggle; level is "line" or "account".
func (m *Metrics) RecordPaymentToggle(dimension, level string) {
	if m == nil {
		return
	}
	m.paymentToggles.WithLabelValues(strings.TrimSpace(dimension), strings.TrimSpace(level)).Inc()
}

func (m *Metrics) RecordReconcileRepairs(dimension string, repaired int) {
	if m == nil || repaired <= 0 {
		return
	}
	m.reconcileRepairs.WithLabelValues(strings.TrimSpace(dimension)).Add(float64(repaired))
}

func (m *Metrics) SetOverdueAccounts(count int64) {
	if m == nil {
		return
	}
	m.overdueAccounts.Set(float64(count))
}

// ObserveJob records a scheduled job run.
func (m *Metrics) ObserveJob(job string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}

func constLabelsFor(cfg config.Config) prometheus.Labels {
	service := strings.TrimSpace(cfg.AppName)
	if service == "" {
		service = "payrollrecon"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	return prometheus.Labels{"service": service, "env": env}
}
