package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services/iam"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type mockResolver struct {
	resolveFunc func(ctx context.Context, identityID string) (*models.User, error)
	calls       int
}

func (m *mockResolver) ResolveIdentity(ctx context.Context, identityID string) (*models.User, error) {
	m.calls++
	return m.resolveFunc(ctx, identityID)
}

type authnFixture struct {
	codec    *auth.TokenCodec
	resolver *mockResolver
	handler  http.Handler
	now      time.Time
	seen     *auth.AuthenticatedPrincipal
	served   bool
}

func newAuthnFixture(t *testing.T, users map[string]*models.User) *authnFixture {
	t.Helper()
	f := &authnFixture{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}

	codec, err := auth.NewTokenCodec(testSecret, auth.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.codec = codec

	f.resolver = &mockResolver{resolveFunc: func(_ context.Context, id string) (*models.User, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		return nil, iam.ErrIdentityNotFound
	}}

	mw, err := NewAuthnMiddleware(AuthnDependencies{
		Codec:    codec,
		Resolver: f.resolver,
		Routes:   auth.DefaultRoutes(config.VisibilityOwnerScoped),
	})
	require.NoError(t, err)

	f.handler = mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.served = true
		if p, ok := auth.GetUserFromContext(r.Context()); ok {
			f.seen = &p
		}
		w.WriteHeader(http.StatusOK)
	}))
	return f
}

func (f *authnFixture) issue(t *testing.T, id string) string {
	t.Helper()
	token, err := f.codec.Issue(id, f.now, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *authnFixture) do(method, path, authorization string) *httptest.ResponseRecorder {
	f.served, f.seen = false, nil
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthn_AttachesPrincipal(t *testing.T) {
	alice := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	f := newAuthnFixture(t, map[string]*models.User{"u1": alice})

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		t.Run(scheme, func(t *testing.T) {
			calls := f.resolver.calls
			rec := f.do(http.MethodGet, "/api/posts/mine", scheme+" "+f.issue(t, "u1"))

			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, f.seen)
			assert.Equal(t, "u1", f.seen.ID)
			assert.Equal(t, "alice", f.seen.Username)
			assert.Equal(t, auth.UserID("u1"), f.seen.PrincipalID)
			assert.Equal(t, calls+1, f.resolver.calls)
		})
	}
}

func TestAuthn_UniformUnauthenticated(t *testing.T) {
	disabledAt := time.Now()
	users := map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Role: models.RoleUser},
		"u2": {ID: "u2", Username: "bob", Role: models.RoleUser, DisabledAt: &disabledAt},
	}
	f := newAuthnFixture(t, users)

	valid := f.issue(t, "u1")
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	expiredCodec, err := auth.NewTokenCodec(testSecret, auth.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	expired, err := expiredCodec.Issue("u1", f.now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	tests := map[string]string{
		"missing header":   "",
		"basic scheme":     "Basic dXNlcjpwYXNz",
		"no token":         "Bearer ",
		"two tokens":       "Bearer " + valid + " " + valid,
		"garbage":          "Bearer not-a-token",
		"tampered payload": "Bearer " + tampered,
		"expired":          "Bearer " + expired,
		"unknown identity": "Bearer " + f.issue(t, "ghost"),
		"disabled":         "Bearer " + f.issue(t, "u2"),
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec := f.do(http.MethodGet, "/api/posts/mine", header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
			assert.False(t, f.served)
		})
	}
}

func TestAuthn_PublicRouteIgnoresToken(t *testing.T) {
	f := newAuthnFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/auth/login", "Bearer garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.served)
	assert.Nil(t, f.seen)
	assert.Zero(t, f.resolver.calls)
}

func TestAuthn_TransientResolverFailure(t *testing.T) {
	f := newAuthnFixture(t, nil)
	f.resolver.resolveFunc = func(context.Context, string) (*models.User, error) {
		return nil, errors.New("connection reset")
	}

	rec := f.do(http.MethodGet, "/api/posts/mine", "Bearer "+f.issue(t, "u1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Equal(t, 1, f.resolver.calls)
	assert.False(t, f.served)
}

func TestAuthn_WebSocketQueryToken(t *testing.T) {
	alice := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser}
	f := newAuthnFixture(t, map[string]*models.User{"u1": alice})
	token := f.issue(t, "u1")

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/stream?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.seen)
	assert.Equal(t, "u1", f.seen.ID)

	// Plain requests never read the query parameter.
	rec = f.do(http.MethodGet, "/api/notifications?token="+token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewAuthnMiddleware_RequiresDependencies(t *testing.T) {
	_, err := NewAuthnMiddleware(AuthnDependencies{})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, reason := bearerToken("Bearer abc")
	assert.Equal(t, "abc", token)
	assert.Empty(t, reason)

	_, reason = bearerToken("Bearerabc")
	assert.Equal(t, reasonBadScheme, reason)

	_, reason = bearerToken("")
	assert.Equal(t, reasonMissingHeader, reason)
}
