// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// AuthRequestsTotal counts auth workflow calls by result.
// Labels:
//   - operation: "login", "register", "protected" or "update_profile"
//   - outcome: "success", "invalid_credentials", "user_not_found",
//     "duplicate_field" or "internal_failure"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth workflow calls, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// DuplicateRegistrationsTotal counts registrations rejected by a uniqueness constraint.
// Label:
//   - field: "username", "email" or "unknown"
var DuplicateRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_registrations_total",
		Help:      "Total number of registrations rejected because a unique field was taken.",
	},
	[]string{"field"},
)

// TokensIssuedTotal counts signed bearer tokens.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued.",
	},
)

// PasswordHashDuration measures bcrypt work.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and verify calls.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)
