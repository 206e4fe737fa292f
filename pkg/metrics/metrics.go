// Package metrics registers the Prometheus instruments for the service.
// Route templates (not raw paths) are used as labels to keep cardinality
// bounded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docregistry_http_requests_total",
			Help: "Total HTTP requests handled, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docregistry_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	authzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docregistry_authz_decisions_total",
			Help: "Access policy decisions, by operation and effect.",
		},
		[]string{"operation", "effect"},
	)

	loginChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docregistry_login_checks_total",
			Help: "Login attempt pre-checks, by outcome.",
		},
		[]string{"outcome"},
	)
)

func ObserveHTTPRequest(method, route, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func CountAuthzDecision(operation string, allowed bool) {
	effect := "deny"
	if allowed {
		effect = "allow"
	}
	authzDecisionsTotal.WithLabelValues(operation, effect).Inc()
}

func CountLoginCheck(outcome string) {
	loginChecksTotal.WithLabelValues(outcome).Inc()
}
