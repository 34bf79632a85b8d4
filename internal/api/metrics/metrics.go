// Package metrics defines and registers the custom Prometheus metrics for
// the dashboard session core. It is the single source of truth for metric
// names, labels, and help strings; promauto registers everything with the
// default registry at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// MutationsTotal counts administrative mutations by outcome.
// Labels:
//   - action: "role-changed", "permission-toggled", "user-created", "profile-updated"
//   - result: "ok" or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of administrative mutations attempted, by action and result.",
	},
	[]string{"action", "result"},
)

// GuardDecisionsTotal counts route guard outcomes per protected capability.
// Labels:
//   - capability: "orders", "products", "users", "reports"
//   - decision: "authorized" or "denied"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by capability and outcome.",
	},
	[]string{"capability", "decision"},
)

// SessionsTotal counts session lifecycle operations.
// Label:
//   - operation: "login", "logout", "refresh", "bootstrap"
var SessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Total number of session lifecycle operations.",
	},
	[]string{"operation"},
)
