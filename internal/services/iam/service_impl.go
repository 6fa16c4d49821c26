package iam

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

const tracerName = "skillapi/services/iam"

var validRoles = map[string]bool{
	models.RoleUser:        true,
	models.RoleAdmin:       true,
	auth.RoleNameModerator: true,
}

// iamService implements the Service interface.
type iamService struct {
	users         repository.UserRepository
	follows       repository.FollowRepository
	codec         *auth.TokenCodec
	policy        *auth.Policy
	notifier      notifications.Notifier
	resetNotifier ResetNotifier

	tokenTTL time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

// IAMServiceDependencies contains all dependencies for IAM service construction.
type IAMServiceDependencies struct {
	Users         repository.UserRepository
	Follows       repository.FollowRepository
	Codec         *auth.TokenCodec
	Policy        *auth.Policy
	Notifier      notifications.Notifier // optional
	ResetNotifier ResetNotifier          // optional, defaults to LogResetNotifier
}

// IAMServiceConfig contains configuration for IAM service construction.
// Separated from dependencies to clearly distinguish config from runtime dependencies.
type IAMServiceConfig struct {
	Config *config.Config

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewIAMService creates a new IAM service with all dependencies.
func NewIAMService(deps IAMServiceDependencies, cfg IAMServiceConfig) (Service, error) {
	if deps.Users == nil || deps.Follows == nil {
		return nil, errors.New("iam: user and follow repositories are required")
	}
	if deps.Codec == nil {
		return nil, errors.New("iam: token codec is required")
	}
	if deps.Policy == nil {
		return nil, errors.New("iam: policy is required")
	}
	if cfg.Config == nil {
		return nil, errors.New("iam: config is required")
	}

	s := &iamService{
		users:         deps.Users,
		follows:       deps.Follows,
		codec:         deps.Codec,
		policy:        deps.Policy,
		notifier:      deps.Notifier,
		resetNotifier: deps.ResetNotifier,
		tokenTTL:      cfg.Config.TokenTTL,
		resetTTL:      cfg.Config.PasswordResetTTL,
		now:           cfg.Now,
	}
	if s.resetNotifier == nil {
		s.resetNotifier = LogResetNotifier{Debug: cfg.Config.Debug}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// =========================================================================
// Identity Resolution
// =========================================================================

func (s *iamService) ResolveIdentity(ctx context.Context, identityID string) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "iam.ResolveIdentity",
		attribute.String(telemetry.AttrPrincipalID, identityID),
	)
	defer span.End()

	user, err := s.users.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	span.SetAttributes(attribute.String(telemetry.AttrPrincipalRole, user.Role))
	return user, nil
}

// =========================================================================
// Credentials
// =========================================================================

func (s *iamService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	user, err := s.createUser(ctx, input.Username, input.Name, input.Email, input.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

func (s *iamService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Spend the same bcrypt work as a real check.
			_ = auth.CheckPassword(dummyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled() {
		log.Printf("login rejected for disabled user %s", user.ID)
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("failed to record last login for user %s: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}
	return s.issueSession(user)
}

func (s *iamService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("request password reset: %w", err)
	}
	if !user.Enabled() {
		log.Printf("password reset ignored for disabled user %s", user.ID)
		return nil
	}

	token, tokenHash, err := auth.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	expiresAt := s.now().UTC().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.resetNotifier.SendPasswordReset(ctx, user, token, expiresAt); err != nil {
		log.Printf("failed to deliver password reset for user %s: %v", user.ID, err)
	}
	return nil
}

func (s *iamService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	user, err := s.users.GetByResetTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("confirm password reset: %w", err)
	}
	if user.ResetExpiresAt == nil || !s.now().Before(*user.ResetExpiresAt) || !user.Enabled() {
		return ErrInvalidResetToken
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	// SetPasswordHash also clears the reset token.
	if err := s.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// =========================================================================
// Profiles and Follow Graph
// =========================================================================

func (s *iamService) Profile(ctx context.Context) (*models.User, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

func (s *iamService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ProfilePictureURL != nil {
		user.ProfilePictureURL = strings.TrimSpace(*update.ProfilePictureURL)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *iamService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if _, err := s.policy.AssertAuthenticated(ctx); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *iamService) Follow(ctx context.Context, targetID string) error {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return err
	}
	if targetID == principal.ID {
		return services.InvalidInput("cannot follow yourself")
	}

	created, err := s.follows.Follow(ctx, principal.ID, targetID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("follow user: %w", err)
	}

	if created && s.notifier != nil {
		s.notifier.Notify(ctx, notifications.Event{
			RecipientID: targetID,
			ActorID:     principal.ID,
			Type:        models.NotificationFollow,
			Message:     fmt.Sprintf("%s started following you", principal.Username),
			TargetID:    principal.ID,
		})
	}
	return nil
}

func (s *iamService) Unfollow(ctx context.Context, targetID string) error {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return err
	}
	if targetID == principal.ID {
		return services.InvalidInput("cannot unfollow yourself")
	}
	if err := s.follows.Unfollow(ctx, principal.ID, targetID); err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}
	return nil
}

func (s *iamService) Followers(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

func (s *iamService) Following(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}

// =========================================================================
// Administration
// =========================================================================

func (s *iamService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	return s.createUser(ctx, input.Username, input.Name, input.Email, input.Password, role)
}

func (s *iamService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *iamService) SetDisabled(ctx context.Context, userID string, disabled bool) (*models.User, error) {
	var disabledAt *time.Time
	if disabled {
		now := s.now().UTC()
		disabledAt = &now
	}
	if err := s.users.SetDisabled(ctx, userID, disabledAt); err != nil {
		return nil, fmt.Errorf("set disabled: %w", err)
	}
	return s.reload(ctx, userID)
}

func (s *iamService) SetRole(ctx context.Context, userID, role string) (*models.User, error) {
	if !validRoles[role] {
		return nil, services.InvalidInput("unknown role %q", role)
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	return s.reload(ctx, userID)
}

// =========================================================================
// Helpers
// =========================================================================

func (s *iamService) createUser(ctx context.Context, username, name, email, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" {
		return nil, services.InvalidInput("username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, services.InvalidInput("a valid email is required")
	}
	if !validRoles[role] {
		return nil, services.InvalidInput("unknown role %q", role)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           bunx.NewUUIDv7(),
		Username:     username,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *iamService) issueSession(user *models.User) (*Session, error) {
	issuedAt := s.now()
	token, err := s.codec.Issue(user.ID, issuedAt, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: auth.ExpiresAt(issuedAt, s.tokenTTL),
		User:      user,
	}, nil
}

func (s *iamService) reload(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return "", fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
		}
		return "", err
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue string
)

// dummyHash is compared against on unknown emails.
func dummyHash() string {
	dummyHashOnce.Do(func() {
		hash, err := auth.HashPassword("not-a-real-password")
		if err == nil {
			dummyHashValue = hash
		}
	})
	return dummyHashValue
}
