package handlers

import (
	"time"

	"github.com/google/uuid"

	"scorevo/internal/models"
)

// User is the wire shape of a directory entry.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func userToAPI(u models.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// Activity is the wire shape of an activity with its participant set.
type Activity struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Mode         string    `json:"mode"`
	CreatedAt    time.Time `json:"created_at"`
	Participants []User    `json:"participants"`
}

func activityToAPI(a models.Activity) Activity {
	participants := make([]User, 0, len(a.Participants))
	for _, p := range a.Participants {
		participants = append(participants, userToAPI(p))
	}
	return Activity{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		Mode:         string(a.Mode),
		CreatedAt:    a.CreatedAt,
		Participants: participants,
	}
}

// Score is the wire shape of one ledger entry.
type Score struct {
	ID         uuid.UUID `json:"id"`
	ActivityID uuid.UUID `json:"activity_id"`
	UserID     uuid.UUID `json:"user_id"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"`
}

func scoreToAPI(s models.Score) Score {
	return Score{
		ID:         s.ID,
		ActivityID: s.ActivityID,
		UserID:     s.UserID,
		Points:     s.Points,
		CreatedAt:  s.CreatedAt,
	}
}

func scoresToAPI(scores []models.Score) []Score {
	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		out = append(out, scoreToAPI(s))
	}
	return out
}

// Invitation is the wire shape of an invitation.
type Invitation struct {
	ID         uuid.UUID  `json:"id"`
	Token      string     `json:"token"`
	Email      string     `json:"email"`
	ActivityID uuid.UUID  `json:"activity_id"`
	InvitedBy  *uuid.UUID `json:"invited_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	Accepted   bool       `json:"accepted"`
}

func invitationToAPI(i models.Invitation) Invitation {
	return Invitation{
		ID:         i.ID,
		Token:      i.Token,
		Email:      i.Email,
		ActivityID: i.ActivityID,
		InvitedBy:  i.InvitedByID,
		CreatedAt:  i.CreatedAt,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
		Accepted:   i.Accepted,
	}
}
