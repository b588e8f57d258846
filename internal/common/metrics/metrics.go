// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_signups_total",
			Help: "Total number of successful activity signups",
		},
		[]string{"activity"},
	)

	// Labelled by error code only; unknown activity names would be unbounded.
	SignupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_signup_failures_total",
			Help: "Total number of rejected or failed signups",
		},
		[]string{"error_code"},
	)

	SignupHookFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_signup_hook_failures_total",
			Help: "Total number of signup hook errors",
		},
		[]string{"hook"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
