package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// ProfileUpdateRequest is the body of PUT /api/users/profile. Absent fields
// are left unchanged.
type ProfileUpdateRequest struct {
	Name              *string `json:"name"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// UserHandlers serves profiles and the follow graph.
type UserHandlers struct {
	iam       iam.Service
	validator validation.Validator
}

// NewUserHandlers creates the user handler set.
func NewUserHandlers(svc iam.Service, v validation.Validator) *UserHandlers {
	return &UserHandlers{iam: svc, validator: v}
}

// Routes mounts the handlers on r.
func (h *UserHandlers) Routes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Post("/follow/{userId}", h.Follow)
	r.Delete("/follow/{userId}", h.Unfollow)
	r.Get("/{id}", h.GetUser)
	r.Get("/{id}/followers", h.Followers)
	r.Get("/{id}/following", h.Following)
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.iam.Profile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user, true))
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdateRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaProfileUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.iam.UpdateProfile(r.Context(), iam.ProfileUpdate{
		Name:              req.Name,
		Bio:               req.Bio,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user, true))
}

// GetUser handles GET /api/users/{id}.
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.iam.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	principal, _ := auth.GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, newUserResponse(user, principal.ID == user.ID))
}

// Follow handles POST /api/users/follow/{userId}.
func (h *UserHandlers) Follow(w http.ResponseWriter, r *http.Request) {
	if err := h.iam.Follow(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": true})
}

// Unfollow handles DELETE /api/users/follow/{userId}.
func (h *UserHandlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.iam.Unfollow(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": false})
}

// Followers handles GET /api/users/{id}/followers.
func (h *UserHandlers) Followers(w http.ResponseWriter, r *http.Request) {
	users, err := h.iam.Followers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserList(users, false))
}

// Following handles GET /api/users/{id}/following.
func (h *UserHandlers) Following(w http.ResponseWriter, r *http.Request) {
	users, err := h.iam.Following(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserList(users, false))
}
