package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"scorevo/internal/models"
)

func TestCreateInvitationIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice)

	ctx := context.Background()
	first, err := f.invitations.Create(ctx, activity.ID, "new@example.com", alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := f.invitations.Create(ctx, activity.ID, "New@Example.com ", alice.ID)
	if err != nil {
		t.Fatalf("Create() again error = %v", err)
	}

	if first.Token != second.Token {
		t.Fatalf("second Create() token = %q, want existing token %q", second.Token, first.Token)
	}
	if first.ID != second.ID {
		t.Fatalf("second Create() returned a new invitation record")
	}
	if len(f.notifier.invitations) != 2 {
		t.Fatalf("invitation mails sent = %d, want 2 (re-send acts as reminder)", len(f.notifier.invitations))
	}
}

func TestCreateInvitationGuards(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	bob := f.seedUser(t, "bob@example.com", "bob")
	outsider := f.seedUser(t, "carol@example.com", "carol")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice, bob)

	ctx := context.Background()
	if _, err := f.invitations.Create(ctx, activity.ID, "new@example.com", outsider.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Create() by non-participant error = %v, want %v", err, ErrForbidden)
	}
	if _, err := f.invitations.Create(ctx, activity.ID, "", alice.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("Create() with empty email error = %v, want %v", err, ErrValidation)
	}
	if _, err := f.invitations.Create(ctx, activity.ID, bob.Email, alice.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("Create() for existing participant error = %v, want %v", err, ErrConflict)
	}
}

func TestAcceptInvitation(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	dave := f.seedUser(t, "dave@example.com", "dave")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice)

	ctx := context.Background()
	invitation, err := f.invitations.Create(ctx, activity.ID, dave.Email, alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := f.invitations.Accept(ctx, invitation.Token, dave.ID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if result.Status != InvitationAccepted {
		t.Fatalf("Accept() status = %q, want %q", result.Status, InvitationAccepted)
	}
	if got := f.participantCount(t, activity.ID); got != 2 {
		t.Fatalf("participant count = %d, want 2", got)
	}

	stored, err := f.invitations.GetByToken(ctx, invitation.Token)
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if !stored.Accepted || stored.AcceptedAt == nil {
		t.Fatalf("invitation not marked accepted: %+v", stored)
	}

	// Accepting twice must not add the membership again.
	result, err = f.invitations.Accept(ctx, invitation.Token, dave.ID)
	if err != nil {
		t.Fatalf("second Accept() error = %v", err)
	}
	if result.Status != InvitationAlreadyAccepted {
		t.Fatalf("second Accept() status = %q, want %q", result.Status, InvitationAlreadyAccepted)
	}
	if got := f.participantCount(t, activity.ID); got != 2 {
		t.Fatalf("participant count after second accept = %d, want 2", got)
	}
}

func TestAcceptInvitationEmailMismatch(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	eve := f.seedUser(t, "eve@example.com", "eve")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice)

	ctx := context.Background()
	invitation, err := f.invitations.Create(ctx, activity.ID, "dave@example.com", alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := f.invitations.Accept(ctx, invitation.Token, eve.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Accept() with wrong account error = %v, want %v", err, ErrForbidden)
	}
	if got := f.participantCount(t, activity.ID); got != 1 {
		t.Fatalf("participant count = %d, want 1", got)
	}
}

func TestAcceptInvitationUnknownToken(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")

	if _, err := f.invitations.Accept(context.Background(), "no-such-token", alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Accept() unknown token error = %v, want %v", err, ErrNotFound)
	}
}

func TestAcceptInvitationExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	dave := f.seedUser(t, "dave@example.com", "dave")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.invitations.now = func() time.Time { return base }

	ctx := context.Background()
	invitation, err := f.invitations.Create(ctx, activity.ID, dave.Email, alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	expiresAt := invitation.ExpiresAt

	// The boundary is inclusive: at exactly ExpiresAt the invitation is
	// still usable, one millisecond later it is not.
	f.invitations.now = func() time.Time { return expiresAt }
	result, err := f.invitations.Accept(ctx, invitation.Token, dave.ID)
	if err != nil {
		t.Fatalf("Accept() at expiry error = %v", err)
	}
	if result.Status != InvitationAccepted {
		t.Fatalf("Accept() at expiry status = %q, want %q", result.Status, InvitationAccepted)
	}

	late, err := f.invitations.Create(ctx, activity.ID, "late@example.com", alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f.invitations.now = func() time.Time { return late.ExpiresAt.Add(time.Millisecond) }
	result, err = f.invitations.Accept(ctx, late.Token, dave.ID)
	if err != nil {
		t.Fatalf("Accept() past expiry error = %v", err)
	}
	if result.Status != InvitationExpired {
		t.Fatalf("Accept() past expiry status = %q, want %q", result.Status, InvitationExpired)
	}
}

func TestDeclineInvitation(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	dave := f.seedUser(t, "dave@example.com", "dave")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice)

	ctx := context.Background()
	invitation, err := f.invitations.Create(ctx, activity.ID, dave.Email, alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := f.invitations.Decline(ctx, invitation.Token, dave.ID)
	if err != nil {
		t.Fatalf("Decline() error = %v", err)
	}
	if result.Status != InvitationDeclined {
		t.Fatalf("Decline() status = %q, want %q", result.Status, InvitationDeclined)
	}

	// No DECLINED marker persists; the record is gone.
	if _, err := f.invitations.GetByToken(ctx, invitation.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByToken() after decline error = %v, want %v", err, ErrNotFound)
	}
	if got := f.participantCount(t, activity.ID); got != 1 {
		t.Fatalf("participant count = %d, want 1", got)
	}
}

func TestProcessPendingForNewRegistration(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	first := f.seedActivity(t, models.ModeFreeIncrement, alice)
	second := f.seedActivity(t, models.ModePenaltyBalance, alice)

	ctx := context.Background()
	if _, err := f.invitations.Create(ctx, first.ID, "new@example.com", alice.ID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.invitations.Create(ctx, second.ID, "new@example.com", alice.ID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user, err := f.users.Register(ctx, "new@example.com", "newbie")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for _, activity := range []models.Activity{first, second} {
		participant, err := f.activities.IsParticipant(ctx, activity.ID, user.ID)
		if err != nil {
			t.Fatalf("IsParticipant() error = %v", err)
		}
		if !participant {
			t.Errorf("new user not added to activity %s", activity.ID)
		}
	}

	pending, err := f.invitations.ListPendingByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("ListPendingByEmail() error = %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending invitations after registration = %d, want 0", len(pending))
	}
}

func TestCleanupExpired(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice@example.com", "alice")
	dave := f.seedUser(t, "dave@example.com", "dave")
	activity := f.seedActivity(t, models.ModeFreeIncrement, alice)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.invitations.now = func() time.Time { return base }

	ctx := context.Background()
	stale, err := f.invitations.Create(ctx, activity.ID, "stale@example.com", alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	accepted, err := f.invitations.Create(ctx, activity.ID, dave.Email, alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.invitations.Accept(ctx, accepted.Token, dave.ID); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	// One day after the TTL: the pending invitation is swept, the accepted
	// one is retained, a fresh one survives.
	f.invitations.now = func() time.Time { return base.Add(DefaultInvitationTTL + 24*time.Hour) }
	fresh, err := f.invitations.Create(ctx, activity.ID, "fresh@example.com", alice.ID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := f.invitations.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("CleanupExpired() deleted = %d, want 1", deleted)
	}

	if _, err := f.invitations.GetByToken(ctx, stale.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale invitation still present, error = %v", err)
	}
	if _, err := f.invitations.GetByToken(ctx, accepted.Token); err != nil {
		t.Fatalf("accepted invitation was swept: %v", err)
	}
	if _, err := f.invitations.GetByToken(ctx, fresh.Token); err != nil {
		t.Fatalf("fresh invitation was swept: %v", err)
	}
}
