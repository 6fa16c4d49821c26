package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

// TokenValidator verifies an access token and returns the identity id it names.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// IdentityResolver loads the identity named by a validated token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, identityID string) (*models.User, error)
}

// AuthnDependencies bundles collaborators required by the authentication middleware.
type AuthnDependencies struct {
	Codec    TokenValidator
	Resolver IdentityResolver
	Routes   *auth.RouteTable
	Metrics  *telemetry.AuthMetrics // optional
}

// Reasons an authentication attempt was rejected. They are logged and
// recorded as metric attributes, never returned to the client.
const (
	reasonMissingHeader = "missing_header"
	reasonBadScheme     = "bad_scheme"
	reasonMalformed     = "malformed_token"
	reasonSignature     = "invalid_signature"
	reasonExpired       = "expired"
	reasonNotFound      = "identity_not_found"
	reasonDisabled      = "identity_disabled"
	reasonResolver      = "resolver_error"
)

// NewAuthnMiddleware returns a chi middleware that authenticates every request
// the route table does not list as public. A public route is served without a
// principal even when the request carries a token.
func NewAuthnMiddleware(deps AuthnDependencies) (func(http.Handler) http.Handler, error) {
	if deps.Codec == nil {
		return nil, errors.New("authn middleware requires token codec")
	}
	if deps.Resolver == nil {
		return nil, errors.New("authn middleware requires identity resolver")
	}
	if deps.Routes == nil {
		return nil, errors.New("authn middleware requires route table")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if deps.Routes.IsPublic(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			reject := func(reason string, err error) {
				if err != nil {
					log.Printf("authentication failed for %s %s (request %s): %s: %v", r.Method, r.URL.Path, chimiddleware.GetReqID(ctx), reason, err)
				} else {
					log.Printf("authentication failed for %s %s (request %s): %s", r.Method, r.URL.Path, chimiddleware.GetReqID(ctx), reason)
				}
				deps.Metrics.RecordAuth(ctx, false, reason)
				unauthenticated(w)
			}

			token, reason := bearerToken(authorization(r))
			if reason != "" {
				reject(reason, nil)
				return
			}

			identityID, err := deps.Codec.Validate(token)
			if err != nil {
				reject(tokenFailureReason(err), err)
				return
			}

			user, err := deps.Resolver.ResolveIdentity(ctx, identityID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				reject(reasonNotFound, err)
				return
			case err != nil:
				log.Printf("error resolving identity %s for %s %s (request %s): %v", identityID, r.Method, r.URL.Path, chimiddleware.GetReqID(ctx), err)
				deps.Metrics.RecordAuth(ctx, false, reasonResolver)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !user.Enabled() {
				reject(reasonDisabled, nil)
				return
			}

			deps.Metrics.RecordAuth(ctx, true, "")
			ctx = auth.SetUserContext(ctx, iam.PrincipalFromUser(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively and must be followed by exactly one
// space and a single token.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", reasonMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", reasonBadScheme
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", reasonMalformed
	}
	return token, ""
}

// authorization returns the Authorization header. Browsers cannot set headers
// on a websocket handshake, so an upgrade request may carry the token in the
// token query parameter instead.
func authorization(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return header
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if token := r.URL.Query().Get("token"); token != "" {
			return "Bearer " + token
		}
	}
	return ""
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return reasonExpired
	case errors.Is(err, auth.ErrInvalidSignature):
		return reasonSignature
	default:
		return reasonMalformed
	}
}
