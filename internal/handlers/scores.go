package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

type scoreRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
}

func (a *API) handleAddFreeIncrementScore(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	score, err := a.scores.AddFreeIncrement(r.Context(), activityID, req.UserID, req.Points, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"score": scoreToAPI(score)})
}

func (a *API) handleAddPenaltyBalanceScore(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	score, err := a.scores.AddPenaltyBalance(r.Context(), activityID, req.UserID, req.Points, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"score": scoreToAPI(score)})
}

func (a *API) handleListActivityScores(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	scores, err := a.scores.ListForActivity(r.Context(), activityID, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"scores": scoresToAPI(scores)})
}

func (a *API) handleListUserScores(w http.ResponseWriter, r *http.Request) {
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

	scores, err := a.scores.ListForUser(r.Context(), activityID, userID, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"scores": scoresToAPI(scores)})
}

func (a *API) handleCurrentTotals(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	totals, err := a.scores.CurrentTotals(r.Context(), activityID, caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make(map[string]int, len(totals))
	for userID, total := range totals {
		out[userID.String()] = total
	}
	respondJSON(w, http.StatusOK, map[string]any{"totals": out})
}

func (a *API) handleDeleteScore(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	scoreID, ok := pathUUID(w, r, "scoreID")
	if !ok {
		return
	}

	if err := a.scores.Delete(r.Context(), scoreID, caller); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
