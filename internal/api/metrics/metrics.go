// Package metrics defines and registers all custom Prometheus metrics for
// the auth service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// LoginsTotal counts first-factor login attempts.
// Label:
//   - result: "success", "invalid_credentials", "blocked", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ChallengesIssuedTotal counts one-time codes issued.
// Label:
//   - purpose: "login", "password_reset", "email_change"
var ChallengesIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "challenges_issued_total",
		Help:      "Total number of one-time codes issued, by purpose.",
	},
	[]string{"purpose"},
)

// ChallengesVerifiedTotal counts one-time code verifications.
// Labels:
//   - purpose: "login", "password_reset", "email_change"
//   - result:  "success" or "failure"
var ChallengesVerifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "challenges_verified_total",
		Help:      "Total number of one-time code verifications, by purpose and result.",
	},
	[]string{"purpose", "result"},
)

// SessionRefreshesTotal counts refresh-token exchanges.
// Label:
//   - result: "success", "expired", "blocked", "error"
var SessionRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refreshes_total",
		Help:      "Total number of refresh-token exchanges, by result.",
	},
	[]string{"result"},
)

// AccountMutationsTotal counts admin lifecycle mutations that succeeded.
// Label:
//   - action: "block", "unblock", "soft_delete", "hard_delete",
//     "create_user", "create_admin", "update"
var AccountMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_mutations_total",
		Help:      "Total number of successful admin account mutations, by action.",
	},
	[]string{"action"},
)
