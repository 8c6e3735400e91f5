// Package metrics defines the custom Prometheus metrics of the auth API. It is
// the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry on import; HTTP request metrics
// come from the echoprometheus middleware installed by the router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/busops/identity-service/internal/core/domain"
)

const namespace = "busops_auth"

// Operation label values.
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpRefresh  = "refresh"
	OpResolve  = "resolve"
)

// AuthRequestsTotal counts authentication operations by outcome.
// Labels:
//   - operation: register, login, refresh, resolve
//   - outcome: success, or the error kind (conflict, unauthorized, forbidden,
//     invalid), or "error" for unclassified failures
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of authentication operations, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// AuthDuration measures operation latency. Login and register are dominated
// by password hashing.
var AuthDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of authentication operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"operation"},
)

// TokensIssuedTotal counts issued token pairs.
// Label:
//   - operation: register, login, refresh
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_pairs_issued_total",
		Help:      "Total number of access/refresh token pairs issued.",
	},
	[]string{"operation"},
)

// Outcome maps an operation result to the outcome label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

// Observe records one operation. Call it with the start time and final error.
func Observe(operation string, start time.Time, err error) {
	AuthRequestsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	AuthDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil && operation != OpResolve {
		TokensIssuedTotal.WithLabelValues(operation).Inc()
	}
}
