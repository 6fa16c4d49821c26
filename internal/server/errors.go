package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeError maps a service error onto the HTTP error taxonomy. Anything
// unrecognised is a 500 whose cause only reaches the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, iam.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, auth.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, invalidInputMessage(err))
	case errors.Is(err, repository.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, "already exists")
	default:
		log.Printf("internal error on %s %s (request %s): %v", r.Method, r.URL.Path, chimiddleware.GetReqID(r.Context()), err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// invalidInputMessage strips wrapping context so the client sees only what
// it has to fix.
func invalidInputMessage(err error) string {
	msg := err.Error()
	prefix := services.ErrInvalidInput.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return services.ErrInvalidInput.Error()
}

// decodeBody reads a bounded JSON body and validates it against schema.
func decodeBody(w http.ResponseWriter, r *http.Request, v validation.Validator, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.InvalidInput("request body exceeds %d bytes", maxBodyBytes)
		}
		return fmt.Errorf("read request body: %w", err)
	}
	return v.Decode(schema, body, dst)
}
