package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scorevo/internal/service"
)

// callerHeader carries the authenticated caller's id, resolved by the
// upstream auth layer.
const callerHeader = "X-User-ID"

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondServiceError maps the core error taxonomy onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, service.ErrConflict):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, service.ErrValidation):
		respondError(w, http.StatusBadRequest, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

// callerID extracts the acting user's id from the request. Responds 401 and
// returns false when the header is missing or malformed.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		respondError(w, http.StatusUnauthorized, errors.New("missing "+callerHeader+" header"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusUnauthorized, errors.New("malformed "+callerHeader+" header"))
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a uuid URL parameter. Responds 400 and returns false on a
// malformed value.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("malformed "+name))
		return uuid.Nil, false
	}
	return id, true
}
