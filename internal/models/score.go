package models

import (
	"time"

	"github.com/google/uuid"
)

// Score is one immutable ledger entry. A user's current total in an
// activity is the sum of their entries' points; no aggregate is stored.
// Points are negative only for penalty-balance offsets.
type Score struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Points     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
