package service

// InvitationStatus classifies the outcome of an accept or decline request.
// Expired and already-accepted invitations are valid requests whose action
// did not apply, so they are reported as statuses rather than errors.
type InvitationStatus string

const (
	InvitationAccepted        InvitationStatus = "accepted"
	InvitationDeclined        InvitationStatus = "declined"
	InvitationExpired         InvitationStatus = "expired"
	InvitationAlreadyAccepted InvitationStatus = "already_accepted"
)

// InvitationResult reports what an accept or decline request did.
type InvitationResult struct {
	Status  InvitationStatus `json:"status"`
	Message string           `json:"message"`
}

// MessageResult carries a human-readable outcome for operations whose effect
// depends on current state, such as inviting by email.
type MessageResult struct {
	Message string `json:"message"`
}
