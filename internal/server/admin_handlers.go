package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// PolicyReloader reloads authorization policies from storage.
// casbin.IEnforcer satisfies it.
type PolicyReloader interface {
	LoadPolicy() error
}

// CreateUserRequest is the body of POST /api/admin/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RoleUpdateRequest is the body of PUT /api/admin/users/{id}/role.
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// AdminHandlers serves account administration. The router guards every
// route with an admin role check.
type AdminHandlers struct {
	iam       iam.Service
	validator validation.Validator
}

// NewAdminHandlers creates the admin handler set.
func NewAdminHandlers(svc iam.Service, v validation.Validator) *AdminHandlers {
	return &AdminHandlers{iam: svc, validator: v}
}

// Routes mounts the handlers on r.
func (h *AdminHandlers) Routes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Post("/users", h.CreateUser)
	r.Put("/users/{id}/disable", h.setDisabled(true))
	r.Put("/users/{id}/enable", h.setDisabled(false))
	r.Put("/users/{id}/role", h.SetRole)
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.iam.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserList(users, true))
}

// CreateUser handles POST /api/admin/users.
func (h *AdminHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaAdminUserCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.iam.CreateUser(r.Context(), iam.CreateUserInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user, true))
}

func (h *AdminHandlers) setDisabled(disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.iam.SetDisabled(r.Context(), chi.URLParam(r, "id"), disabled)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(user, true))
	}
}

// SetRole handles PUT /api/admin/users/{id}/role.
func (h *AdminHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var req RoleUpdateRequest
	if err := decodeBody(w, r, h.validator, validation.SchemaRoleUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.iam.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user, true))
}

// HandlePolicyReload handles POST /api/admin/policy/reload.
func HandlePolicyReload(reloader PolicyReloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reloader.LoadPolicy(); err != nil {
			writeError(w, r, err)
			return
		}
		principal, _ := auth.GetUserFromContext(r.Context())
		log.Printf("authorization policies reloaded by %s", principal.PrincipalID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}
