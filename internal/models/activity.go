package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityMode selects the scoring rules for an activity. The mode is fixed
// at creation; changing it would invalidate the meaning of existing ledger
// entries.
type ActivityMode string

const (
	// ModeFreeIncrement awards positive points to a single participant.
	ModeFreeIncrement ActivityMode = "FREE_INCREMENT"
	// ModePenaltyBalance offsets new penalties against other participants'
	// outstanding balances before charging the offender.
	ModePenaltyBalance ActivityMode = "PENALTY_BALANCE"
)

// Valid reports whether m is a known activity mode.
func (m ActivityMode) Valid() bool {
	return m == ModeFreeIncrement || m == ModePenaltyBalance
}

// Activity is a shared group with a participant set and a points ledger.
type Activity struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name        string       `gorm:"type:text;not null"`
	Description string       `gorm:"type:text"`
	Mode        ActivityMode `gorm:"type:text;not null"`
	CreatedAt   time.Time    `gorm:"autoCreateTime"`

	Participants []User `gorm:"many2many:activity_participants"`
}
