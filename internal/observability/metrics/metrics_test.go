package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCrisisMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCrisisMetrics(reg)
	m.ObserveAssessment("CRITICAL", 0.5)
	m.ObserveEscalation("CRITICAL")
	m.ObserveAlert("guardian_sms", "sent")
}

func TestCrisisMetricsNilSafe(t *testing.T) {
	var m *CrisisMetrics
	m.ObserveAssessment("LOW", 0.1)
	m.ObserveEscalation("HIGH")
	m.ObserveAlert("company_hr", "logged")
}
