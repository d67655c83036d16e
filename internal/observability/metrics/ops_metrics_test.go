package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOpsMetricsRegisterAndCollect(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOpsMetrics(registry, Config{ServiceName: "fieldops", Environment: "test"})

	m.ObserveTransition("planned", "in_progress")
	m.ObserveTransition("", "planned")
	m.ObserveReminderSent()
	m.SetReminderBacklog(3)
	m.ObserveReportGeneration(2 * time.Second)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	got := map[string]bool{}
	for _, family := range families {
		got[family.GetName()] = true
	}
	for _, name := range []string{
		"fieldops_intervention_transitions_total",
		"fieldops_reminders_sent_total",
		"fieldops_reminder_backlog",
		"fieldops_report_generation_seconds",
	} {
		if !got[name] {
			t.Fatalf("metric %s not registered, have %v", name, got)
		}
	}
}

func TestOpsMetricsDuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	newOpsMetrics(registry, Config{})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	newOpsMetrics(registry, Config{})
}

func TestOpsMetricsNilReceiverIsSafe(t *testing.T) {
	var m *OpsMetrics
	m.ObserveTransition("planned", "completed")
	m.ObserveReminderSent()
	m.SetReminderBacklog(1)
	m.ObserveReportGeneration(time.Second)
}
