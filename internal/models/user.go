package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory entry for a registered account. Credentials and
// sessions live in the external auth service; only identity fields are
// stored here.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"type:text;uniqueIndex;not null"`
	DisplayName string    `gorm:"type:text;uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
