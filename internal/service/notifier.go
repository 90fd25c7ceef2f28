package service

import (
	"context"

	"github.com/google/uuid"
)

// InvitationMail carries everything the mail template needs so the notifier
// does not query the store itself.
type InvitationMail struct {
	Email        string
	Token        string
	ActivityName string
	InviterName  string
	// ExistingUser selects between the direct accept link and the
	// register-then-join link.
	ExistingUser bool
}

// Notifier delivers best-effort user notifications. Failures are logged by
// the caller and never fail the triggering operation.
type Notifier interface {
	SendInvitation(ctx context.Context, mail InvitationMail) error
	SendScoreChange(ctx context.Context, activityID, userID uuid.UUID, delta int) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) SendInvitation(context.Context, InvitationMail) error { return nil }

func (NopNotifier) SendScoreChange(context.Context, uuid.UUID, uuid.UUID, int) error { return nil }
