// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ThreatScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stormwatch_threat_score",
			Help: "Current threat probability score per target (0-100)",
		},
		[]string{"target"},
	)

	EventCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stormwatch_assessment_events",
			Help: "Events contributing to the latest assessment per target",
		},
		[]string{"target"},
	)

	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stormwatch_assessments_total",
			Help: "Completed assessments per target",
		},
		[]string{"target"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stormwatch_fetch_errors_total",
			Help: "Upstream fetch failures per source",
		},
		[]string{"source"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stormwatch_records_skipped_total",
			Help: "Raw records dropped during normalization per target",
		},
		[]string{"target"},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stormwatch_alerts_sent_total",
			Help: "Alert notifications dispatched per target",
		},
		[]string{"target"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stormwatch_api_requests_total",
			Help: "HTTP API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	Momentum = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stormwatch_threat_momentum",
			Help: "Momentum of the threat score per target (1 increasing, 0 stable, -1 decreasing)",
		},
		[]string{"target"},
	)
)

// MomentumValue converts a momentum label into the gauge encoding.
func MomentumValue(momentum string) float64 {
	switch momentum {
	case "increasing":
		return 1
	case "decreasing":
		return -1
	default:
		return 0
	}
}
