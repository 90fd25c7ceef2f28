package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (a *API) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		ActivityID uuid.UUID `json:"activity_id"`
		Email      string    `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.ActivityID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("activity_id is required"))
		return
	}

	invitation, err := a.invitations.Create(r.Context(), req.ActivityID, req.Email, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"invitation": invitationToAPI(invitation)})
}

func (a *API) handleGetInvitationByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondError(w, http.StatusBadRequest, errors.New("token is required"))
		return
	}

	invitation, err := a.invitations.GetByToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"invitation": invitationToAPI(invitation)})
}

func (a *API) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	result, err := a.invitations.Accept(r.Context(), token, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleDeclineInvitation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	result, err := a.invitations.Decline(r.Context(), token, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleListPendingInvitations(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, errors.New("email query parameter is required"))
		return
	}

	invitations, err := a.invitations.ListPendingByEmail(r.Context(), email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]Invitation, 0, len(invitations))
	for _, invitation := range invitations {
		out = append(out, invitationToAPI(invitation))
	}
	respondJSON(w, http.StatusOK, map[string]any{"invitations": out})
}
