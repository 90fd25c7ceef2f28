package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"scorevo/internal/audit"
	"scorevo/internal/events"
	"scorevo/internal/metrics"
	"scorevo/internal/models"
)

// ScoreService owns the append-only points ledger. Writes are gated on the
// activity's mode and on membership of both the acting and the target user.
type ScoreService struct {
	db       *gorm.DB
	notifier Notifier
	events   *events.Publisher
	audit    *audit.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewScoreService wires a ScoreService.
func NewScoreService(database *gorm.DB, notifier Notifier, publisher *events.Publisher, recorder *audit.Recorder, log zerolog.Logger) *ScoreService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ScoreService{
		db:       database,
		notifier: notifier,
		events:   publisher,
		audit:    recorder,
		log:      log,
		now:      time.Now,
	}
}

// scoreDelta is a notification queued during a ledger transaction and sent
// after commit.
type scoreDelta struct {
	userID uuid.UUID
	delta  int
}

// AddFreeIncrement appends one positive entry for targetUserID. Only valid
// in FREE_INCREMENT mode.
func (s *ScoreService) AddFreeIncrement(ctx context.Context, activityID, targetUserID uuid.UUID, points int, actingUserID uuid.UUID) (models.Score, error) {
	if points < 1 {
		return models.Score{}, invalid("points must be a positive integer")
	}

	var score models.Score
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := fetchActivity(tx, activityID)
		if err != nil {
			return err
		}
		if activity.Mode != models.ModeFreeIncrement {
			return conflict("activity %s is not in FREE_INCREMENT mode", activityID)
		}
		if !IsParticipant(activity, actingUserID) {
			return forbidden("user %s is not a participant of activity %s", actingUserID, activityID)
		}
		if _, err := fetchUser(tx, targetUserID); err != nil {
			return err
		}
		if !IsParticipant(activity, targetUserID) {
			return conflict("user %s is not a participant of activity %s", targetUserID, activityID)
		}

		score = models.Score{
			ID:         uuid.New(),
			ActivityID: activityID,
			UserID:     targetUserID,
			Points:     points,
			CreatedAt:  s.now().UTC(),
		}
		return tx.Create(&score).Error
	})
	if err != nil {
		return models.Score{}, err
	}

	s.afterWrite(ctx, activityID, actingUserID, models.ModeFreeIncrement, []scoreDelta{{userID: targetUserID, delta: points}})
	return score, nil
}

// AddPenaltyBalance charges a penalty to offendingUserID after first using
// it to offset other participants' outstanding positive balances. Offsets
// are written as independent negative ledger entries; the offender receives
// one entry holding whatever remains, possibly zero. Participants are
// offset in ascending user id order so the distribution is reproducible.
func (s *ScoreService) AddPenaltyBalance(ctx context.Context, activityID, offendingUserID uuid.UUID, points int, actingUserID uuid.UUID) (models.Score, error) {
	if points < 1 {
		return models.Score{}, invalid("penalty points must be a positive integer")
	}

	var (
		score  models.Score
		deltas []scoreDelta
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := fetchActivity(tx, activityID)
		if err != nil {
			return err
		}
		if activity.Mode != models.ModePenaltyBalance {
			return conflict("activity %s is not in PENALTY_BALANCE mode", activityID)
		}
		if !IsParticipant(activity, actingUserID) {
			return forbidden("user %s is not a participant of activity %s", actingUserID, activityID)
		}
		if _, err := fetchUser(tx, offendingUserID); err != nil {
			return err
		}
		if !IsParticipant(activity, offendingUserID) {
			return conflict("user %s is not a participant of activity %s", offendingUserID, activityID)
		}

		totals, err := sumTotals(tx, activityID)
		if err != nil {
			return err
		}

		others := make([]models.User, 0, len(activity.Participants))
		for _, p := range activity.Participants {
			if p.ID != offendingUserID {
				others = append(others, p)
			}
		}
		sort.Slice(others, func(i, j int) bool {
			return bytes.Compare(others[i].ID[:], others[j].ID[:]) < 0
		})

		createdAt := s.now().UTC()
		remaining := points
		for _, other := range others {
			if remaining == 0 {
				break
			}
			total := totals[other.ID]
			if total <= 0 {
				continue
			}
			offset := min(total, remaining)
			entry := models.Score{
				ID:         uuid.New(),
				ActivityID: activityID,
				UserID:     other.ID,
				Points:     -offset,
				CreatedAt:  createdAt,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			deltas = append(deltas, scoreDelta{userID: other.ID, delta: -offset})
			remaining -= offset
		}

		score = models.Score{
			ID:         uuid.New(),
			ActivityID: activityID,
			UserID:     offendingUserID,
			Points:     remaining,
			CreatedAt:  createdAt,
		}
		if err := tx.Create(&score).Error; err != nil {
			return err
		}
		deltas = append(deltas, scoreDelta{userID: offendingUserID, delta: remaining})
		return nil
	})
	if err != nil {
		return models.Score{}, err
	}

	s.afterWrite(ctx, activityID, actingUserID, models.ModePenaltyBalance, deltas)
	return score, nil
}

// Delete removes exactly one ledger entry. Offsets triggered by the entry
// are independent entries and are left untouched.
func (s *ScoreService) Delete(ctx context.Context, scoreID, actingUserID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var score models.Score
		err := tx.First(&score, "id = ?", scoreID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("score %s", scoreID)
		}
		if err != nil {
			return err
		}

		activity, err := fetchActivity(tx, score.ActivityID)
		if err != nil {
			return err
		}
		if !IsParticipant(activity, actingUserID) {
			return forbidden("user %s is not a participant of activity %s", actingUserID, score.ActivityID)
		}

		return tx.Delete(&models.Score{}, "id = ?", scoreID).Error
	})
	if err != nil {
		return err
	}

	s.events.Publish(events.ScoreDeletedTopic, map[string]any{
		"score_id": scoreID,
	})
	s.audit.Record(ctx, actingUserID, "score.delete", "score", scoreID.String(), nil)
	return nil
}

// ListForActivity returns every ledger entry in the activity, oldest first.
func (s *ScoreService) ListForActivity(ctx context.Context, activityID, actingUserID uuid.UUID) ([]models.Score, error) {
	if err := s.requireParticipant(ctx, activityID, actingUserID); err != nil {
		return nil, err
	}

	var scores []models.Score
	err := s.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// ListForUser returns targetUserID's ledger entries in the activity.
func (s *ScoreService) ListForUser(ctx context.Context, activityID, targetUserID, actingUserID uuid.UUID) ([]models.Score, error) {
	if err := s.requireParticipant(ctx, activityID, actingUserID); err != nil {
		return nil, err
	}

	var scores []models.Score
	err := s.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ?", activityID, targetUserID).
		Order("created_at").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// CurrentTotals returns each scoring user's running total. Totals are
// always derived from the ledger; nothing is cached.
func (s *ScoreService) CurrentTotals(ctx context.Context, activityID, actingUserID uuid.UUID) (map[uuid.UUID]int, error) {
	if err := s.requireParticipant(ctx, activityID, actingUserID); err != nil {
		return nil, err
	}
	return sumTotals(s.db.WithContext(ctx), activityID)
}

func (s *ScoreService) requireParticipant(ctx context.Context, activityID, actingUserID uuid.UUID) error {
	activity, err := fetchActivity(s.db.WithContext(ctx), activityID)
	if err != nil {
		return err
	}
	if !IsParticipant(activity, actingUserID) {
		return forbidden("user %s is not a participant of activity %s", actingUserID, activityID)
	}
	return nil
}

func (s *ScoreService) afterWrite(ctx context.Context, activityID, actingUserID uuid.UUID, mode models.ActivityMode, deltas []scoreDelta) {
	metrics.ScoresWritten.WithLabelValues(string(mode)).Add(float64(len(deltas)))

	for _, d := range deltas {
		if err := s.notifier.SendScoreChange(ctx, activityID, d.userID, d.delta); err != nil {
			s.log.Error().Err(err).
				Str("activity_id", activityID.String()).
				Str("user_id", d.userID.String()).
				Msg("send score notification")
		}
		s.events.Publish(events.ScoreAppliedTopic, map[string]any{
			"activity_id": activityID,
			"user_id":     d.userID,
			"delta":       d.delta,
		})
	}

	s.audit.Record(ctx, actingUserID, "score.write", "activity", activityID.String(), map[string]any{
		"mode":    string(mode),
		"entries": len(deltas),
	})
}

func sumTotals(tx *gorm.DB, activityID uuid.UUID) (map[uuid.UUID]int, error) {
	var scores []models.Score
	if err := tx.Where("activity_id = ?", activityID).Find(&scores).Error; err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]int, len(scores))
	for _, score := range scores {
		totals[score.UserID] += score.Points
	}
	return totals, nil
}
