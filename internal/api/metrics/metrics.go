// Package metrics defines and registers all custom Prometheus metrics for
// the chat backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// RemoteCallsTotal counts synchronization calls against the remote
// messaging platform.
// Labels:
//   - op: "provision", "deprovision", "change_login", "open_dialog", "push"
//   - outcome: "ok" or the failure kind ("CredentialDecodeError",
//     "RemoteAuthError", "RemoteUnavailableError", "RemoteRejected")
var RemoteCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Total number of remote platform synchronization calls, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// RemoteCallDuration measures end-to-end duration of one remote
// synchronization call (session establishment included).
var RemoteCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Duration of remote platform calls from session open to classified result.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// OrphansFlaggedTotal counts remote accounts recorded in the
// reconciliation outbox after a failed local commit.
var OrphansFlaggedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphans_flagged_total",
		Help:      "Total number of orphaned remote accounts written to the reconciliation outbox.",
	},
)

// OrphansResolvedTotal counts outbox entries successfully cleaned up by
// the reconciler.
var OrphansResolvedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphans_resolved_total",
		Help:      "Total number of orphaned remote accounts deleted by the reconciler.",
	},
)

// PushDedupTotal counts replay-guard decisions for push notifications.
// Label:
//   - result: "hit" (duplicate, suppressed), "miss" (delivered) or
//     "error" (guard unavailable, delivered without the check)
var PushDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_dedup_total",
		Help:      "Total number of push replay-guard checks, labelled by result (hit/miss/error).",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts successfully registered (and remotely
// mirrored) users.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered with a linked remote account.",
	},
)
