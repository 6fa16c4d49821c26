package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/dbtest"
	"github.com/terraconstructs/skillshare/internal/db/models"
)

func TestBunUserRepository_Create(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	t.Run("create valid user", func(t *testing.T) {
		user := &models.User{
			ID:           bunx.NewUUIDv7(),
			Username:     "ada",
			Email:        "ada@example.com",
			PasswordHash: "hash",
			Role:         models.RoleUser,
		}
		require.NoError(t, repo.Create(ctx, user))

		retrieved, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada", retrieved.Username)
		assert.Equal(t, "ada@example.com", retrieved.Email)
		assert.True(t, retrieved.Enabled())
		assert.NotZero(t, retrieved.CreatedAt)
		assert.Equal(t, retrieved.CreatedAt, retrieved.UpdatedAt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		user := &models.User{
			ID:           bunx.NewUUIDv7(),
			Username:     "ada2",
			Email:        "ada@example.com",
			PasswordHash: "hash",
		}
		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		user := &models.User{
			ID:           bunx.NewUUIDv7(),
			Username:     "ada",
			Email:        "other@example.com",
			PasswordHash: "hash",
		}
		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestBunUserRepository_Lookups(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "grace", models.RoleUser)

	byEmail, err := repo.GetByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.GetByUsername(ctx, "grace")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetByID(ctx, bunx.NewUUIDv7())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_Updates(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "linus", models.RoleUser)

	t.Run("profile", func(t *testing.T) {
		user.Name = "Linus T"
		user.Bio = "kernels"
		require.NoError(t, repo.UpdateProfile(ctx, user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Linus T", got.Name)
		assert.Equal(t, "kernels", got.Bio)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
	})

	t.Run("reset token lifecycle", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		require.NoError(t, repo.SetResetToken(ctx, user.ID, "hash-1", expires))

		got, err := repo.GetByResetTokenHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotNil(t, got.ResetExpiresAt)

		require.NoError(t, repo.SetPasswordHash(ctx, user.ID, "new-hash"))
		_, err = repo.GetByResetTokenHash(ctx, "hash-1")
		assert.ErrorIs(t, err, ErrNotFound)

		got, err = repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.Nil(t, got.ResetTokenHash)
	})

	t.Run("disable and enable", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, repo.SetDisabled(ctx, user.ID, &now))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, got.Enabled())

		require.NoError(t, repo.SetDisabled(ctx, user.ID, nil))
		got, err = repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Enabled())
	})

	t.Run("role", func(t *testing.T) {
		require.NoError(t, repo.SetRole(ctx, user.ID, models.RoleAdmin))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.SetRole(ctx, bunx.NewUUIDv7(), models.RoleAdmin)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunFollowRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunFollowRepository(db)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)
	carol := dbtest.CreateUser(t, db, "carol", models.RoleUser)
	base := time.Now().UTC()

	created, err := repo.Follow(ctx, alice.ID, bob.ID, base)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, alice.ID, bob.ID, base.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, created, "repeated follow is absorbed")

	_, err = repo.Follow(ctx, carol.ID, bob.ID, base.Add(2*time.Second))
	require.NoError(t, err)

	_, err = repo.Follow(ctx, alice.ID, bunx.NewUUIDv7(), base)
	assert.ErrorIs(t, err, ErrNotFound)

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := repo.ListFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, carol.ID, followers[0].ID)
	assert.Equal(t, alice.ID, followers[1].ID)

	followees, err := repo.ListFollowing(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followees, 1)
	assert.Equal(t, bob.ID, followees[0].ID)

	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
	following, err = repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}
