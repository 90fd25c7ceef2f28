// Package metrics exposes Prometheus counters for the scorevo core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoresWritten counts ledger entries created, labelled by activity mode.
	ScoresWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorevo_scores_written_total",
		Help: "Number of ledger entries written, by activity mode.",
	}, []string{"mode"})

	// InvitationsCreated counts new invitation records.
	InvitationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scorevo_invitations_created_total",
		Help: "Number of invitations created.",
	})

	// InvitationsSwept counts expired invitations removed by the sweeper.
	InvitationsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scorevo_invitations_swept_total",
		Help: "Number of expired invitations deleted by the cleanup sweep.",
	})
)
