// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Total number of lead submissions by outcome",
		},
		[]string{"outcome"},
	)

	LeadClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_classifications_total",
			Help: "Total number of classified leads by tier and motivation",
		},
		[]string{"tier", "motivation"},
	)

	VerificationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_verification_results_total",
			Help: "Bot verification results by decision",
		},
		[]string{"decision"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_upstream_requests_total",
			Help: "Outbound requests by target and result",
		},
		[]string{"target", "result"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lead_upstream_request_duration_seconds",
			Help: "Duration of outbound requests in seconds",
		},
		[]string{"target"},
	)

	SubmissionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_submissions_active",
			Help: "Number of submissions currently in flight",
		},
	)
)
