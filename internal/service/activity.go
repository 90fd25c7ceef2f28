package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"scorevo/internal/audit"
	"scorevo/internal/events"
	"scorevo/internal/models"
)

// ActivityService owns the activity aggregate: creation, updates, the
// participant set, and the cascade delete of everything an activity owns.
type ActivityService struct {
	db          *gorm.DB
	invitations *InvitationService
	events      *events.Publisher
	audit       *audit.Recorder
	log         zerolog.Logger
	now         func() time.Time
}

// NewActivityService wires an ActivityService.
func NewActivityService(database *gorm.DB, invitations *InvitationService, publisher *events.Publisher, recorder *audit.Recorder, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		db:          database,
		invitations: invitations,
		events:      publisher,
		audit:       recorder,
		log:         log,
		now:         time.Now,
	}
}

// Create persists a new activity with the creator as its sole participant.
func (s *ActivityService) Create(ctx context.Context, name, description string, mode models.ActivityMode, creatorID uuid.UUID) (models.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Activity{}, invalid("activity name is required")
	}
	if !mode.Valid() {
		return models.Activity{}, invalid("unknown activity mode %q", mode)
	}

	var activity models.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		creator, err := fetchUser(tx, creatorID)
		if err != nil {
			return err
		}

		activity = models.Activity{
			ID:          uuid.New(),
			Name:        name,
			Description: description,
			Mode:        mode,
			CreatedAt:   s.now().UTC(),
		}
		if err := tx.Omit("Participants").Create(&activity).Error; err != nil {
			return err
		}
		if err := tx.Model(&activity).Association("Participants").Append(&creator); err != nil {
			return err
		}
		activity.Participants = []models.User{creator}
		return nil
	})
	if err != nil {
		return models.Activity{}, err
	}

	s.audit.Record(ctx, creatorID, "activity.create", "activity", activity.ID.String(), map[string]any{
		"name": name,
		"mode": string(mode),
	})
	return activity, nil
}

// Get loads an activity with its participant set.
func (s *ActivityService) Get(ctx context.Context, id uuid.UUID) (models.Activity, error) {
	return fetchActivity(s.db.WithContext(ctx), id)
}

// ListForUser returns all activities the user participates in.
func (s *ActivityService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN activity_participants ap ON ap.activity_id = activities.id").
		Where("ap.user_id = ?", userID).
		Order("activities.created_at").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// Update changes the activity's name and description. The mode is fixed at
// creation; requesting a different one is a conflict.
func (s *ActivityService) Update(ctx context.Context, id uuid.UUID, name, description string, mode models.ActivityMode, actingUserID uuid.UUID) (models.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Activity{}, invalid("activity name is required")
	}

	var activity models.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		activity, err = fetchActivity(tx, id)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, actingUserID) {
			return forbidden("user %s is not a participant of activity %s", actingUserID, id)
		}
		if mode != "" && mode != activity.Mode {
			return conflict("activity mode cannot be changed after creation")
		}

		activity.Name = name
		activity.Description = description
		return tx.Omit("Participants").Save(&activity).Error
	})
	if err != nil {
		return models.Activity{}, err
	}

	s.audit.Record(ctx, actingUserID, "activity.update", "activity", id.String(), map[string]any{
		"name": name,
	})
	return activity, nil
}

// Delete removes an activity and everything it owns. The cascade is
// explicit and ordered: invitations, then scores, then participant links,
// then the activity row, all in one transaction.
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := fetchActivity(tx, id)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, actingUserID) {
			return forbidden("user %s is not a participant of activity %s", actingUserID, id)
		}

		if err := tx.Where("activity_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("delete activity invitations: %w", err)
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.Score{}).Error; err != nil {
			return fmt.Errorf("delete activity scores: %w", err)
		}
		if err := tx.Model(&activity).Association("Participants").Clear(); err != nil {
			return fmt.Errorf("clear activity participants: %w", err)
		}
		return tx.Delete(&models.Activity{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.events.Publish(events.ActivityDeletedTopic, map[string]any{
		"activity_id": id,
	})
	s.audit.Record(ctx, actingUserID, "activity.delete", "activity", id.String(), nil)
	return nil
}

// IsParticipant reports whether userID participates in the activity.
func (s *ActivityService) IsParticipant(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	activity, err := fetchActivity(s.db.WithContext(ctx), activityID)
	if err != nil {
		return false, err
	}
	return IsParticipant(activity, userID), nil
}

// AddParticipant adds userID to the activity's participant set. The acting
// user must already be a participant. Adding a user twice is a conflict,
// never a silent no-op.
func (s *ActivityService) AddParticipant(ctx context.Context, activityID, userID, actingUserID uuid.UUID) (models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		activity, err = fetchActivity(tx, activityID)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, actingUserID) {
			return forbidden("user %s is not a participant of activity %s", actingUserID, activityID)
		}

		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}
		if IsParticipant(activity, userID) {
			return conflict("user %s is already a participant of activity %s", userID, activityID)
		}

		if err := tx.Model(&activity).Association("Participants").Append(&user); err != nil {
			return err
		}
		activity.Participants = append(activity.Participants, user)
		return nil
	})
	if err != nil {
		return models.Activity{}, err
	}

	s.audit.Record(ctx, actingUserID, "activity.add_participant", "activity", activityID.String(), map[string]any{
		"user_id": userID.String(),
	})
	return activity, nil
}

// AddParticipantByEmail does not add anyone directly: it issues (or
// re-sends) a pending invitation that the addressee must accept, whether or
// not the email belongs to a registered account.
func (s *ActivityService) AddParticipantByEmail(ctx context.Context, activityID uuid.UUID, email string, actingUserID uuid.UUID) (MessageResult, error) {
	invitation, err := s.invitations.Create(ctx, activityID, email, actingUserID)
	if err != nil {
		return MessageResult{}, err
	}
	return MessageResult{Message: fmt.Sprintf("Invitation has been sent to %s", invitation.Email)}, nil
}

// RemoveParticipant removes userID from the activity's participant set.
// Users may remove themselves; removing anyone else requires the acting
// user to be a participant. Removing an absent user is a conflict.
func (s *ActivityService) RemoveParticipant(ctx context.Context, activityID, userID, actingUserID uuid.UUID) (models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		activity, err = fetchActivity(tx, activityID)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, actingUserID) && actingUserID != userID {
			return forbidden("user %s is not a participant of activity %s", actingUserID, activityID)
		}

		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, userID) {
			return conflict("user %s is not a participant of activity %s", userID, activityID)
		}

		if err := tx.Model(&activity).Association("Participants").Delete(&user); err != nil {
			return err
		}

		remaining := activity.Participants[:0]
		for _, p := range activity.Participants {
			if p.ID != userID {
				remaining = append(remaining, p)
			}
		}
		activity.Participants = remaining
		return nil
	})
	if err != nil {
		return models.Activity{}, err
	}

	s.audit.Record(ctx, actingUserID, "activity.remove_participant", "activity", activityID.String(), map[string]any{
		"user_id": userID.String(),
	})
	return activity, nil
}
