package metrics

import "github.com/prometheus/client_golang/prometheus"

// CrisisMetrics exposes counters/histograms for the assessment and
// escalation pipeline.
type CrisisMetrics struct {
	assessmentsTotal  *prometheus.CounterVec
	escalationsTotal  *prometheus.CounterVec
	alertsTotal       *prometheus.CounterVec
	assessmentLatency *prometheus.HistogramVec
}

func NewCrisisMetrics(reg prometheus.Registerer) *CrisisMetrics {
	m := &CrisisMetrics{
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindhaven",
			Subsystem: "crisis",
			Name:      "assessments_total",
			Help:      "Total crisis assessments by tier",
		}, []string{"tier"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindhaven",
			Subsystem: "crisis",
			Name:      "escalations_total",
			Help:      "Total escalation events written by tier",
		}, []string{"tier"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindhaven",
			Subsystem: "crisis",
			Name:      "alerts_total",
			Help:      "Total emergency alert channel attempts",
		}, []string{"channel", "status"}),
		assessmentLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindhaven",
			Subsystem: "crisis",
			Name:      "assessment_latency_seconds",
			Help:      "Latency of the full assessment pipeline",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tier"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.assessmentsTotal, m.escalationsTotal, m.alertsTotal, m.assessmentLatency)
	return m
}

func (m *CrisisMetrics) ObserveAssessment(tier string, seconds float64) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(tier).Inc()
	m.assessmentLatency.WithLabelValues(tier).Observe(seconds)
}

func (m *CrisisMetrics) ObserveEscalation(tier string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(tier).Inc()
}

func (m *CrisisMetrics) ObserveAlert(channel, status string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(channel, status).Inc()
}
