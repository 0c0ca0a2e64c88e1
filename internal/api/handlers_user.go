package api

import (
	"encoding/json"
	"net/http"

	"github.com/lorettarehm/audhd.ai/internal/api/respond"
	"github.com/lorettarehm/audhd.ai/internal/auth"
	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/services"
)

type UserHandler struct {
	profiles *services.ProfileService
	authz    auth.Authorizer
}

func NewUserHandler(profiles *services.ProfileService, authz auth.Authorizer) *UserHandler {
	return &UserHandler{profiles: profiles, authz: authz}
}

// WhoAmI GET /api/me
func (h *UserHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "user.read")
	if !ok {
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"userId": actor.UserID})
}

// GetProfile GET /api/me/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "profile.read")
	if !ok {
		return
	}
	p, err := h.profiles.GetProfile(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// UpdateProfile PUT /api/me/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "profile.update")
	if !ok {
		return
	}
	var req model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	p, err := h.profiles.UpdateProfile(r.Context(), actor.UserID, req)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}
