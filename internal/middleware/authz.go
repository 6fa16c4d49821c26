package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/terraconstructs/skillshare/internal/auth"
)

// RequireRole returns a chi middleware that admits only principals whose role
// is granted action on objType. Used for the admin routes.
func RequireRole(policy *auth.Policy, objType, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := policy.AssertRole(r.Context(), objType, action)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, auth.ErrUnauthenticated):
				unauthenticated(w)
			case errors.Is(err, auth.ErrForbidden):
				writeError(w, http.StatusForbidden, "forbidden")
			default:
				log.Printf("authorization error for %s %s: %v", r.Method, r.URL.Path, err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		})
	}
}
