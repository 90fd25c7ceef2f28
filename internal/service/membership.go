package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scorevo/internal/models"
)

// IsParticipant reports whether userID appears in the activity's participant
// set.
func IsParticipant(activity models.Activity, userID uuid.UUID) bool {
	for _, p := range activity.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// fetchActivity loads an activity with its participant set.
func fetchActivity(tx *gorm.DB, id uuid.UUID) (models.Activity, error) {
	var activity models.Activity
	err := tx.Preload("Participants").First(&activity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Activity{}, notFound("activity %s", id)
	}
	if err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

// fetchUser loads a user by id.
func fetchUser(tx *gorm.DB, id uuid.UUID) (models.User, error) {
	var user models.User
	err := tx.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, notFound("user %s", id)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
