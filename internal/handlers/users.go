package handlers

import "net/http"

// handleRegisterUser records a new account in the directory and reconciles
// any invitations that were waiting for its email. Called by the external
// registration flow after credentials are set up.
func (a *API) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	user, err := a.users.Register(r.Context(), req.Email, req.DisplayName)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"user": userToAPI(user)})
}
