package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scorevo/internal/models"
)

var testDBCounter atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", testDBCounter.Add(1))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Score{},
		&models.Invitation{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return database
}

// fakeNotifier records notifications and optionally fails every call.
type fakeNotifier struct {
	invitations  []InvitationMail
	scoreChanges []scoreDelta
	fail         bool
}

func (f *fakeNotifier) SendInvitation(_ context.Context, mail InvitationMail) error {
	f.invitations = append(f.invitations, mail)
	if f.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (f *fakeNotifier) SendScoreChange(_ context.Context, _ uuid.UUID, userID uuid.UUID, delta int) error {
	f.scoreChanges = append(f.scoreChanges, scoreDelta{userID: userID, delta: delta})
	if f.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

type fixture struct {
	db          *gorm.DB
	notifier    *fakeNotifier
	users       *UserService
	activities  *ActivityService
	scores      *ScoreService
	invitations *InvitationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := openTestDB(t)
	notifier := &fakeNotifier{}
	log := zerolog.Nop()

	invitations := NewInvitationService(database, notifier, nil, nil, log, 0)
	return &fixture{
		db:          database,
		notifier:    notifier,
		users:       NewUserService(database, invitations, log),
		activities:  NewActivityService(database, invitations, nil, nil, log),
		scores:      NewScoreService(database, notifier, nil, nil, log),
		invitations: invitations,
	}
}

func (f *fixture) seedUser(t *testing.T, email, name string) models.User {
	t.Helper()

	user := models.User{ID: uuid.New(), Email: email, DisplayName: name}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func (f *fixture) seedUserWithID(t *testing.T, id uuid.UUID, email, name string) models.User {
	t.Helper()

	user := models.User{ID: id, Email: email, DisplayName: name}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func (f *fixture) seedScore(t *testing.T, activityID, userID uuid.UUID, points int) models.Score {
	t.Helper()

	score := models.Score{
		ID:         uuid.New(),
		ActivityID: activityID,
		UserID:     userID,
		Points:     points,
		CreatedAt:  time.Now().UTC(),
	}
	if err := f.db.Create(&score).Error; err != nil {
		t.Fatalf("seed score: %v", err)
	}
	return score
}

func (f *fixture) seedActivity(t *testing.T, mode models.ActivityMode, participants ...models.User) models.Activity {
	t.Helper()

	activity := models.Activity{
		ID:        uuid.New(),
		Name:      "test activity",
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.db.Omit("Participants").Create(&activity).Error; err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	for i := range participants {
		if err := f.db.Model(&activity).Association("Participants").Append(&participants[i]); err != nil {
			t.Fatalf("seed participant: %v", err)
		}
	}
	activity.Participants = participants
	return activity
}

func (f *fixture) participantCount(t *testing.T, activityID uuid.UUID) int {
	t.Helper()

	var count int64
	if err := f.db.Table("activity_participants").Where("activity_id = ?", activityID).Count(&count).Error; err != nil {
		t.Fatalf("count participants: %v", err)
	}
	return int(count)
}
