package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurgeRunsTotal counts purge runs by outcome
	PurgeRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_system_purge_runs_total",
		Help: "The total number of purge runs",
	}, []string{"status"})

	// UsersPurgedTotal counts users permanently deleted by the purge job
	UsersPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "account_system_users_purged_total",
		Help: "The total number of users permanently deleted",
	})

	// PurgeFailuresTotal counts users whose purge was rolled back
	PurgeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "account_system_purge_failures_total",
		Help: "The total number of users whose purge failed and was retried later",
	})

	// AccountsPurgedTotal counts accounts removed as part of a user purge
	AccountsPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "account_system_accounts_purged_total",
		Help: "The total number of accounts deleted by the purge job",
	})

	// LoginAttemptsTotal counts login attempts by outcome
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_system_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	// SignupsTotal counts registration attempts by outcome
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_system_signups_total",
		Help: "The total number of registration attempts",
	}, []string{"status"})

	// LifecycleTransitionsTotal counts soft delete and restore transitions
	LifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_system_lifecycle_transitions_total",
		Help: "The total number of soft delete and restore transitions",
	}, []string{"entity", "op"})

	// EventsPublishedTotal counts queue publishes by queue and outcome
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_system_events_published_total",
		Help: "The total number of events published to the broker",
	}, []string{"queue", "status"})
)

// Status returns the label value for an error outcome
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
