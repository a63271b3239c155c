package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the voting ledger. A non-zero
// ChainBreaksDetected is the operational alerting hook for integrity
// violations, which surface out-of-band via the auditor rather than as
// user-facing cast failures.
type Metrics struct {
	VotesCast              prometheus.Counter
	DuplicateVotesRejected prometheus.Counter
	CastDuration           prometheus.Histogram
	AuditsRun              prometheus.Counter
	ChainBreaksDetected    prometheus.Counter
	NotificationsDropped   prometheus.Counter
}

// New creates and registers all metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_votes_cast_total",
			Help: "Total number of votes appended to a chain.",
		}),
		DuplicateVotesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_duplicate_votes_rejected_total",
			Help: "Total number of casts rejected because the voter already participated.",
		}),
		CastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballot_cast_duration_seconds",
			Help:    "End-to-end duration of successful vote casts.",
			Buckets: prometheus.DefBuckets,
		}),
		AuditsRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_chain_audits_total",
			Help: "Total number of chain integrity audits executed.",
		}),
		ChainBreaksDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_chain_breaks_detected_total",
			Help: "Total number of broken chain links reported by audits.",
		}),
		NotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballot_notifications_dropped_total",
			Help: "Total number of best-effort notifications dropped due to backpressure.",
		}),
	}
}
