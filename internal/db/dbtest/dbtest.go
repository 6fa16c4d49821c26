// Package dbtest opens throwaway SQLite databases with the full schema for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// New returns a migrated in-memory database private to the calling test.
func New(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := bunx.NewDB(dsn, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

// CreateUser inserts an enabled user with the given username and role.
// The password hash is a placeholder; tests that log in hash their own.
func CreateUser(t testing.TB, db *bun.DB, username, role string) *models.User {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		ID:           bunx.NewUUIDv7(),
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

// AsUser returns a context carrying user as the authenticated principal.
func AsUser(user *models.User) context.Context {
	return auth.SetUserContext(context.Background(), auth.AuthenticatedPrincipal{
		ID:          user.ID,
		PrincipalID: auth.UserID(user.ID),
		Username:    user.Username,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
	})
}
