package auth

import "context"

// AuthenticatedPrincipal captures identity metadata propagated through the request context.
// It is created by the authentication filter and discarded with the request.
type AuthenticatedPrincipal struct {
	// ID references users.id.
	ID string
	// PrincipalID is the Casbin-ready identifier (e.g., user:0192...).
	PrincipalID string
	// Username is the unique handle.
	Username string
	// Email of the account.
	Email string
	// Name is the optional display name.
	Name string
	// Role is the account role name (user, admin, ...).
	Role string
}

// CasbinSubject returns the subject used when consulting the enforcer.
func (p AuthenticatedPrincipal) CasbinSubject() string {
	if p.Role == "" {
		return p.PrincipalID
	}
	return RoleID(p.Role)
}

type principalContextKey struct{}

// SetUserContext stores the authenticated principal on the context for downstream consumers.
func SetUserContext(ctx context.Context, principal AuthenticatedPrincipal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// GetUserFromContext retrieves the authenticated principal from the context.
func GetUserFromContext(ctx context.Context) (AuthenticatedPrincipal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(AuthenticatedPrincipal)
	return principal, ok
}
