package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"scorevo/internal/audit"
	"scorevo/internal/events"
	"scorevo/internal/metrics"
	"scorevo/internal/models"
)

// DefaultInvitationTTL is how long an invitation stays acceptable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationService owns the invitation token lifecycle: issue, accept,
// decline, and expiry cleanup.
type InvitationService struct {
	db       *gorm.DB
	notifier Notifier
	events   *events.Publisher
	audit    *audit.Recorder
	log      zerolog.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewInvitationService wires an InvitationService. A non-positive ttl falls
// back to DefaultInvitationTTL.
func NewInvitationService(database *gorm.DB, notifier Notifier, publisher *events.Publisher, recorder *audit.Recorder, log zerolog.Logger, ttl time.Duration) *InvitationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &InvitationService{
		db:       database,
		notifier: notifier,
		events:   publisher,
		audit:    recorder,
		log:      log,
		ttl:      ttl,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create issues a pending invitation for (email, activity), or returns the
// existing pending one unchanged. The inviting user must be a participant.
func (s *InvitationService) Create(ctx context.Context, activityID uuid.UUID, email string, invitedByID uuid.UUID) (models.Invitation, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.Invitation{}, invalid("email is required")
	}

	var (
		invitation models.Invitation
		created    bool
		mail       InvitationMail
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := fetchActivity(tx, activityID)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, invitedByID) {
			return forbidden("user %s is not a participant of activity %s", invitedByID, activityID)
		}

		inviter, err := fetchUser(tx, invitedByID)
		if err != nil {
			return err
		}

		var invitee models.User
		existingUser := true
		err = tx.Where("email = ?", email).First(&invitee).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			existingUser = false
		case err != nil:
			return err
		default:
			if IsParticipant(activity, invitee.ID) {
				return conflict("user %s is already a participant of activity %s", email, activityID)
			}
		}

		var existing models.Invitation
		err = tx.Where("email = ? AND activity_id = ? AND accepted = ?", email, activityID, false).
			First(&existing).Error
		switch {
		case err == nil:
			invitation = existing
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		default:
			now := s.now().UTC()
			invitation = models.Invitation{
				ID:          uuid.New(),
				Token:       uuid.NewString(),
				Email:       email,
				ActivityID:  activityID,
				InvitedByID: &invitedByID,
				CreatedAt:   now,
				ExpiresAt:   now.Add(s.ttl),
			}
			created = true
			if err := tx.Create(&invitation).Error; err != nil {
				return err
			}
		}

		mail = InvitationMail{
			Email:        email,
			Token:        invitation.Token,
			ActivityName: activity.Name,
			InviterName:  inviter.DisplayName,
			ExistingUser: existingUser,
		}
		return nil
	})
	if err != nil {
		return models.Invitation{}, err
	}

	// The mail is re-sent even when an existing pending invitation is
	// returned, so repeated invites act as reminders.
	if err := s.notifier.SendInvitation(ctx, mail); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("send invitation mail")
	}

	if created {
		metrics.InvitationsCreated.Inc()
		s.events.Publish(events.InvitationCreatedTopic, map[string]any{
			"invitation_id": invitation.ID,
			"activity_id":   activityID,
			"email":         email,
		})
		s.audit.Record(ctx, invitedByID, "invitation.create", "invitation", invitation.ID.String(), map[string]any{
			"activity_id": activityID.String(),
			"email":       email,
		})
	}
	return invitation, nil
}

// GetByToken resolves an invitation from its opaque token.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Invitation{}, notFound("invitation token")
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return invitation, nil
}

// Accept redeems an invitation token for userID. The user's email must match
// the invitation's target email. Joining is idempotent: if the user is
// already a participant the membership is left untouched and the invitation
// is still marked accepted. Expired and already-accepted invitations are
// reported as result statuses, not errors.
func (s *InvitationService) Accept(ctx context.Context, token string, userID uuid.UUID) (InvitationResult, error) {
	var (
		result     InvitationResult
		invitation models.Invitation
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		invitation, err = s.fetchByToken(tx, token)
		if err != nil {
			return err
		}

		// Expiry is re-checked here, inside the transaction, so an accept
		// racing the cleanup sweep cannot act on a stale read.
		now := s.now().UTC()
		if now.After(invitation.ExpiresAt) {
			result = InvitationResult{Status: InvitationExpired, Message: "This invitation has expired."}
			return nil
		}
		if invitation.Accepted {
			result = InvitationResult{Status: InvitationAlreadyAccepted, Message: "This invitation has already been accepted."}
			return nil
		}

		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}
		if normalizeEmail(user.Email) != invitation.Email {
			return forbidden("invitation was sent to a different email address")
		}

		activity, err := fetchActivity(tx, invitation.ActivityID)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, userID) {
			if err := tx.Model(&activity).Association("Participants").Append(&user); err != nil {
				return err
			}
		}

		invitation.Accepted = true
		invitation.AcceptedAt = &now
		if err := tx.Save(&invitation).Error; err != nil {
			return err
		}

		result = InvitationResult{
			Status:  InvitationAccepted,
			Message: fmt.Sprintf("You have joined the activity: %s", activity.Name),
		}
		return nil
	})
	if err != nil {
		return InvitationResult{}, err
	}

	if result.Status == InvitationAccepted {
		s.events.Publish(events.InvitationAcceptedTopic, map[string]any{
			"invitation_id": invitation.ID,
			"activity_id":   invitation.ActivityID,
			"user_id":       userID,
		})
		s.audit.Record(ctx, userID, "invitation.accept", "invitation", invitation.ID.String(), map[string]any{
			"activity_id": invitation.ActivityID.String(),
		})
	}
	return result, nil
}

// Decline rejects a pending invitation and deletes its record. The same
// expiry and already-accepted checks as Accept apply.
func (s *InvitationService) Decline(ctx context.Context, token string, userID uuid.UUID) (InvitationResult, error) {
	var (
		result     InvitationResult
		invitation models.Invitation
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		invitation, err = s.fetchByToken(tx, token)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if now.After(invitation.ExpiresAt) {
			result = InvitationResult{Status: InvitationExpired, Message: "This invitation has expired."}
			return nil
		}
		if invitation.Accepted {
			result = InvitationResult{Status: InvitationAlreadyAccepted, Message: "This invitation has already been accepted."}
			return nil
		}

		if err := tx.Delete(&models.Invitation{}, "id = ?", invitation.ID).Error; err != nil {
			return err
		}
		result = InvitationResult{Status: InvitationDeclined, Message: "Invitation declined successfully."}
		return nil
	})
	if err != nil {
		return InvitationResult{}, err
	}

	if result.Status == InvitationDeclined {
		s.audit.Record(ctx, userID, "invitation.decline", "invitation", invitation.ID.String(), map[string]any{
			"activity_id": invitation.ActivityID.String(),
		})
	}
	return result, nil
}

// ListPendingByEmail returns all pending invitations addressed to email.
func (s *InvitationService) ListPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.WithContext(ctx).
		Where("email = ? AND accepted = ?", normalizeEmail(email), false).
		Order("created_at").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// ProcessPendingForNewRegistration auto-accepts every pending invitation
// addressed to a freshly registered account's email. A failure on one
// invitation is logged and does not block the others.
func (s *InvitationService) ProcessPendingForNewRegistration(ctx context.Context, userID uuid.UUID, email string) error {
	pending, err := s.ListPendingByEmail(ctx, email)
	if err != nil {
		return err
	}

	for _, invitation := range pending {
		if _, err := s.Accept(ctx, invitation.Token, userID); err != nil {
			s.log.Error().Err(err).
				Str("invitation_id", invitation.ID.String()).
				Str("email", email).
				Msg("auto-accept invitation for new registration")
		}
	}
	return nil
}

// CleanupExpired bulk-deletes pending invitations past their expiry and
// returns how many were removed.
func (s *InvitationService) CleanupExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("accepted = ? AND expires_at < ?", false, s.now().UTC()).
		Delete(&models.Invitation{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		metrics.InvitationsSwept.Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func (s *InvitationService) fetchByToken(tx *gorm.DB, token string) (models.Invitation, error) {
	var invitation models.Invitation
	err := tx.Where("token = ?", token).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Invitation{}, notFound("invitation token")
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return invitation, nil
}
