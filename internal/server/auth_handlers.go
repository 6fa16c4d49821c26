package server

import (
	"net/http"

	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest is the body of POST /api/auth/password-reset/request.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest is the body of POST /api/auth/password-reset/confirm.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleRegister handles POST /api/auth/register.
func HandleRegister(svc iam.Service, v validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeBody(w, r, v, validation.SchemaRegister, &req); err != nil {
			writeError(w, r, err)
			return
		}
		session, err := svc.Register(r.Context(), iam.RegisterInput{
			Username: req.Username,
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newSessionResponse(session))
	}
}

// HandleLogin handles POST /api/auth/login. Every credential failure yields
// the same 401 body.
func HandleLogin(svc iam.Service, v validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeBody(w, r, v, validation.SchemaLogin, &req); err != nil {
			writeError(w, r, err)
			return
		}
		session, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(session))
	}
}

// HandlePasswordResetRequest handles POST /api/auth/password-reset/request.
// It answers 202 whether or not the email belongs to an account.
func HandlePasswordResetRequest(svc iam.Service, v validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PasswordResetRequest
		if err := decodeBody(w, r, v, validation.SchemaPasswordResetRequest, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "if the account exists, a reset token has been issued"})
	}
}

// HandlePasswordResetConfirm handles POST /api/auth/password-reset/confirm.
func HandlePasswordResetConfirm(svc iam.Service, v validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PasswordResetConfirmRequest
		if err := decodeBody(w, r, v, validation.SchemaPasswordResetConfirm, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
