package iam

import (
	"context"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
)

// Service provides all identity and account management operations.
//
// This service centralizes:
//   - Identity resolution (request path - called once per authenticated request)
//   - Registration, login and password reset (public endpoints)
//   - Profile and follow graph management (authenticated endpoints)
//   - Account administration (CLI and admin endpoints)
type Service interface {
	// =========================================================================
	// Identity Resolution (Request Path)
	// =========================================================================

	// ResolveIdentity maps a validated token subject to its user record.
	//
	// Performs exactly one repository lookup. There is no cache: enabled state
	// and role are always current.
	//
	// Returns:
	//   - (user, nil): identity exists (it may be disabled; callers check Enabled)
	//   - (nil, ErrIdentityNotFound): no such identity
	//   - (nil, error): transient failure, never coerced to not-found
	ResolveIdentity(ctx context.Context, identityID string) (*models.User, error)

	// =========================================================================
	// Credentials (Public Endpoints)
	// =========================================================================

	// Register creates an account and returns a session for it.
	// Duplicate email or username returns repository.ErrAlreadyExists.
	Register(ctx context.Context, input RegisterInput) (*Session, error)

	// Login checks credentials and returns a new session.
	// Unknown email, wrong password and disabled account all return
	// ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, error)

	// RequestPasswordReset issues a reset token for the account with email and
	// hands it to the ResetNotifier. Unknown emails succeed silently.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset sets a new password using an outstanding reset token.
	// The token is single use. Unknown or expired tokens return ErrInvalidResetToken.
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	// =========================================================================
	// Profiles and Follow Graph (Authenticated)
	// =========================================================================

	// Profile returns the caller's own account.
	Profile(ctx context.Context) (*models.User, error)

	// UpdateProfile applies the non-nil fields of update to the caller's account.
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error)

	// GetUser returns another identity's account for public profile display.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// Follow makes the caller follow targetID. Following twice is a no-op;
	// following yourself is invalid input.
	Follow(ctx context.Context, targetID string) error

	// Unfollow removes the follow edge. Unfollowing someone not followed is a no-op.
	Unfollow(ctx context.Context, targetID string) error

	// Followers lists identities following userID, most recent first.
	Followers(ctx context.Context, userID string) ([]models.User, error)

	// Following lists identities userID follows, most recent first.
	Following(ctx context.Context, userID string) ([]models.User, error)

	// =========================================================================
	// Administration (CLI and Admin Endpoints)
	// =========================================================================
	//
	// These methods do not consult the request principal; admin HTTP handlers
	// authorize the caller before invoking them.

	// CreateUser creates an account with an explicit role.
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)

	// ListUsers returns every account, newest first.
	ListUsers(ctx context.Context) ([]models.User, error)

	// SetDisabled disables or re-enables an account. Disabled accounts fail
	// authentication on their next request.
	SetDisabled(ctx context.Context, userID string, disabled bool) (*models.User, error)

	// SetRole changes an account's role.
	SetRole(ctx context.Context, userID, role string) (*models.User, error)
}

// Session is the result of a successful registration or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// RegisterInput holds self-service registration fields.
type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

// CreateUserInput holds administrative account creation fields.
type CreateUserInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     string
}

// ProfileUpdate holds optional profile changes; nil fields are left unchanged.
type ProfileUpdate struct {
	Name              *string
	Bio               *string
	ProfilePictureURL *string
}
