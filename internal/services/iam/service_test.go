package iam

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/dbtest"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type recordingResetNotifier struct {
	mu     sync.Mutex
	tokens map[string]string // email -> raw token
}

func (r *recordingResetNotifier) SendPasswordReset(_ context.Context, user *models.User, token string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokens == nil {
		r.tokens = map[string]string{}
	}
	r.tokens[user.Email] = token
	return nil
}

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Notify(_ context.Context, event notifications.Event) {
	r.events = append(r.events, event)
}

type fixture struct {
	svc    Service
	codec  *auth.TokenCodec
	reset  *recordingResetNotifier
	events *recordingNotifier
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)

	f := &fixture{
		reset:  &recordingResetNotifier{},
		events: &recordingNotifier{},
		now:    time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC),
	}
	codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.codec = codec

	svc, err := NewIAMService(IAMServiceDependencies{
		Users:         repository.NewBunUserRepository(db),
		Follows:       repository.NewBunFollowRepository(db),
		Codec:         codec,
		Policy:        auth.NewPolicy(nil),
		Notifier:      f.events,
		ResetNotifier: f.reset,
	}, IAMServiceConfig{
		Config: &config.Config{TokenTTL: time.Hour, PasswordResetTTL: 30 * time.Minute},
		Now:    func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	session, err := f.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return session.User
}

func TestNewIAMService_RequiresDependencies(t *testing.T) {
	_, err := NewIAMService(IAMServiceDependencies{}, IAMServiceConfig{})
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, RegisterInput{
		Username: "ada",
		Name:     "Ada Lovelace",
		Email:    " Ada@Example.com ",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.Equal(t, f.now.Add(time.Hour), session.ExpiresAt)

	subject, err := f.codec.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, subject)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.svc.Register(ctx, RegisterInput{Username: "ada2", Email: "ada@example.com", Password: "correct horse battery"})
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := f.svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("login success", func(t *testing.T) {
		login, err := f.svc.Login(ctx, "ADA@example.com", "correct horse battery")
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, login.User.ID)
		require.NotNil(t, login.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "ada@example.com", "wrong password!")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "nobody@example.com", "correct horse battery")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := f.svc.SetDisabled(ctx, session.User.ID, true)
		require.NoError(t, err)
		_, err = f.svc.Login(ctx, "ada@example.com", "correct horse battery")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.svc.SetDisabled(ctx, session.User.ID, false)
		require.NoError(t, err)
		_, err = f.svc.Login(ctx, "ada@example.com", "correct horse battery")
		assert.NoError(t, err)
	})
}

func TestResolveIdentity(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "grace")

	got, err := f.svc.ResolveIdentity(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.svc.ResolveIdentity(context.Background(), "01920000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type failingUserRepository struct {
	repository.UserRepository
	calls int
	err   error
}

func (r *failingUserRepository) GetByID(context.Context, string) (*models.User, error) {
	r.calls++
	return nil, r.err
}

func TestResolveIdentity_TransientErrorIsNotNotFound(t *testing.T) {
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	users := &failingUserRepository{err: errors.New("connection refused")}

	svc, err := NewIAMService(IAMServiceDependencies{
		Users:   users,
		Follows: repository.NewBunFollowRepository(nil),
		Codec:   codec,
		Policy:  auth.NewPolicy(nil),
	}, IAMServiceConfig{Config: &config.Config{TokenTTL: time.Hour}})
	require.NoError(t, err)

	_, err = svc.ResolveIdentity(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, err, users.err)
	assert.Equal(t, 1, users.calls, "exactly one lookup, no retries")
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "linus")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, f.reset.tokens)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "LINUS@example.com"))
	token := f.reset.tokens[user.Email]
	require.NotEmpty(t, token)

	t.Run("bad token", func(t *testing.T) {
		err := f.svc.ConfirmPasswordReset(ctx, "not-the-token", "new password 123")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("weak password keeps token", func(t *testing.T) {
		err := f.svc.ConfirmPasswordReset(ctx, token, "short")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("success is single use", func(t *testing.T) {
		require.NoError(t, f.svc.ConfirmPasswordReset(ctx, token, "new password 123"))

		_, err := f.svc.Login(ctx, user.Email, "correct horse battery")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.svc.Login(ctx, user.Email, "new password 123")
		assert.NoError(t, err)

		err = f.svc.ConfirmPasswordReset(ctx, token, "another password")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, f.svc.RequestPasswordReset(ctx, user.Email))
		token := f.reset.tokens[user.Email]

		f.now = f.now.Add(30 * time.Minute)
		err := f.svc.ConfirmPasswordReset(ctx, token, "yet another password")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "margaret")

	_, err := f.svc.Profile(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	ctx := dbtest.AsUser(user)
	name, bio := "Margaret H", "Apollo guidance"
	updated, err := f.svc.UpdateProfile(ctx, ProfileUpdate{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Margaret H", updated.Name)

	got, err := f.svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Apollo guidance", got.Bio)
	assert.Equal(t, "", got.ProfilePictureURL)

	_, err = f.svc.GetUser(ctx, "01920000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFollowGraph(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := dbtest.AsUser(alice)

	assert.ErrorIs(t, f.svc.Follow(ctx, alice.ID), services.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.Follow(ctx, "01920000-0000-7000-8000-000000000000"), repository.ErrNotFound)
	assert.ErrorIs(t, f.svc.Follow(context.Background(), bob.ID), auth.ErrUnauthenticated)

	require.NoError(t, f.svc.Follow(ctx, bob.ID))
	require.NoError(t, f.svc.Follow(ctx, bob.ID))
	require.Len(t, f.events.events, 1, "repeat follow does not notify again")
	assert.Equal(t, notifications.Event{
		RecipientID: bob.ID,
		ActorID:     alice.ID,
		Type:        models.NotificationFollow,
		Message:     "alice started following you",
		TargetID:    alice.ID,
	}, f.events.events[0])

	followers, err := f.svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	following, err := f.svc.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)

	require.NoError(t, f.svc.Unfollow(ctx, bob.ID))
	require.NoError(t, f.svc.Unfollow(ctx, bob.ID))
	followers, err = f.svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	_, err = f.svc.Followers(ctx, "01920000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.CreateUser(ctx, CreateUserInput{
		Username: "root",
		Email:    "root@example.com",
		Password: "correct horse battery",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = f.svc.CreateUser(ctx, CreateUserInput{Username: "x", Email: "x@example.com", Password: "correct horse battery", Role: "wizard"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	user := f.register(t, "pat")
	updated, err := f.svc.SetRole(ctx, user.ID, auth.RoleNameModerator)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleNameModerator, updated.Role)

	_, err = f.svc.SetRole(ctx, user.ID, "wizard")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.SetRole(ctx, "01920000-0000-7000-8000-000000000000", models.RoleUser)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	disabled, err := f.svc.SetDisabled(ctx, user.ID, true)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
