// Package events publishes domain events to NATS. Publishing is best
// effort: a nil connection or a failed publish is ignored so event delivery
// can never fail a store write.
package events

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

const (
	ScoreAppliedTopic       = "scorevo.scores.applied"
	ScoreDeletedTopic       = "scorevo.scores.deleted"
	InvitationCreatedTopic  = "scorevo.invitations.created"
	InvitationAcceptedTopic = "scorevo.invitations.accepted"
	ActivityDeletedTopic    = "scorevo.activities.deleted"
)

// Publisher wraps an optional NATS connection.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher returns a Publisher over conn. conn may be nil, in which
// case every publish is a no-op.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Publish serializes payload as JSON and publishes it on subject.
func (p *Publisher) Publish(subject string, payload map[string]any) {
	if p == nil || p.conn == nil || subject == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.conn.Publish(subject, data)
}
