package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_management_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "access_management_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	accessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_management_access_decisions_total",
		Help: "Count of access decisions by outcome and event type",
	}, []string{"outcome", "event_type"})

	recoveryCodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "access_management_recovery_codes_issued_total",
		Help: "Count of password recovery codes issued",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAccessDecision increments the decision counter for the given outcome.
func ObserveAccessDecision(outcome, eventType string) {
	accessDecisions.WithLabelValues(outcome, eventType).Inc()
}

// ObserveRecoveryCodeIssued counts an issued password recovery code.
func ObserveRecoveryCodeIssued() {
	recoveryCodesIssued.Inc()
}
