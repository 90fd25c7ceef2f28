package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"scorevo/internal/models"
)

func (a *API) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Mode        string `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	activity, err := a.activities.Create(r.Context(), req.Name, req.Description, models.ActivityMode(req.Mode), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"activity": activityToAPI(activity)})
}

func (a *API) handleListActivities(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	activities, err := a.activities.ListForUser(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]Activity, 0, len(activities))
	for _, activity := range activities {
		out = append(out, activityToAPI(activity))
	}
	respondJSON(w, http.StatusOK, map[string]any{"activities": out})
}

func (a *API) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	activity, err := a.activities.Get(r.Context(), activityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"activity": activityToAPI(activity)})
}

func (a *API) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Mode        string `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	activity, err := a.activities.Update(r.Context(), activityID, req.Name, req.Description, models.ActivityMode(req.Mode), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"activity": activityToAPI(activity)})
}

func (a *API) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	if err := a.activities.Delete(r.Context(), activityID, caller); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	activity, err := a.activities.AddParticipant(r.Context(), activityID, req.UserID, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"activity": activityToAPI(activity)})
}

func (a *API) handleAddParticipantByEmail(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.activities.AddParticipantByEmail(r.Context(), activityID, req.Email, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleIsParticipant(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	participant, err := a.activities.IsParticipant(r.Context(), activityID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"is_participant": participant})
}

func (a *API) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	activity, err := a.activities.RemoveParticipant(r.Context(), activityID, userID, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"activity": activityToAPI(activity)})
}
