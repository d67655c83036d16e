package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OpsMetrics tracks intervention lifecycle and scheduler activity.
type OpsMetrics struct {
	statusTransitions *prometheus.CounterVec
	remindersSent     prometheus.Counter
	reminderBacklog   prometheus.Gauge
	reportDuration    prometheus.Histogram
}

var (
	opsMetricsOnce sync.Once
	opsMetrics     *OpsMetrics
)

// Ops returns the process-wide operations metrics.
func Ops() *OpsMetrics {
	return OpsWithConfig(Config{})
}

// OpsWithConfig returns the operations metrics, initializing them once.
func OpsWithConfig(cfg Config) *OpsMetrics {
	opsMetricsOnce.Do(func() {
		opsMetrics = newOpsMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return opsMetrics
}

// ResetOpsMetricsForTest clears the singleton between test registries.
func ResetOpsMetricsForTest() {
	opsMetricsOnce = sync.Once{}
	opsMetrics = nil
}

func newOpsMetrics(registerer prometheus.Registerer, cfg Config) *OpsMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "fieldops"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	statusTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "fieldops_intervention_transitions_total",
			Help:        "Intervention status transitions by previous and new status.",
			ConstLabels: constLabels,
		},
		[]string{"from", "to"},
	)
	remindersSent := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "fieldops_reminders_sent_total",
			Help:        "Pre-service reminders dispatched by the scheduler.",
			ConstLabels: constLabels,
		},
	)
	reminderBacklog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "fieldops_reminder_backlog",
			Help:        "Planned interventions inside the reminder window still awaiting a reminder.",
			ConstLabels: constLabels,
		},
	)
	reportDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "fieldops_report_generation_seconds",
			Help:        "Wall time spent generating monthly reports, including the AI call.",
			ConstLabels: constLabels,
			Buckets:     []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	registerer.MustRegister(statusTransitions, remindersSent, reminderBacklog, reportDuration)

	return &OpsMetrics{
		statusTransitions: statusTransitions,
		remindersSent:     remindersSent,
		reminderBacklog:   reminderBacklog,
		reportDuration:    reportDuration,
	}
}

// ObserveTransition records a status transition.
func (m *OpsMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	if from == "" {
		from = "none"
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// ObserveReminderSent counts a dispatched reminder.
func (m *OpsMetrics) ObserveReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

// SetReminderBacklog records the current reminder backlog size.
func (m *OpsMetrics) SetReminderBacklog(size int) {
	if m == nil {
		return
	}
	m.reminderBacklog.Set(float64(size))
}

// ObserveReportGeneration records how long a report generation took.
func (m *OpsMetrics) ObserveReportGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.Observe(d.Seconds())
}
