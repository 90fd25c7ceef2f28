package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is an emailed offer to join an activity, addressed by email so
// it can target accounts that do not exist yet. The token is opaque and
// never reused. A pending invitation is one with Accepted == false;
// declined and expired invitations are deleted outright.
type Invitation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Token       string     `gorm:"type:text;uniqueIndex;not null"`
	Email       string     `gorm:"type:text;not null;index:idx_invitations_email_activity"`
	ActivityID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_invitations_email_activity"`
	InvitedByID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"not null"`
	ExpiresAt   time.Time  `gorm:"not null;index"`
	AcceptedAt  *time.Time
	Accepted    bool `gorm:"not null;default:false"`

	InvitedBy *User `gorm:"constraint:OnDelete:SET NULL;foreignKey:InvitedByID;references:ID"`
}

// Pending reports whether the invitation can still be accepted or declined
// at the given instant. The expiry boundary is inclusive: an invitation is
// usable at exactly ExpiresAt and expired strictly after it.
func (i Invitation) Pending(now time.Time) bool {
	return !i.Accepted && !now.After(i.ExpiresAt)
}
