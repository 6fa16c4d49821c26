package progress

import (
	"context"
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
)

func TestProgress_OwnerScoped(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(Dependencies{
		Progress:   repository.NewBunProgressRepository(db),
		Policy:     auth.NewPolicy(nil),
		Visibility: config.VisibilityOwnerScoped,
	})
	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)
	aliceCtx, bobCtx := dbtest.AsUser(alice), dbtest.AsUser(bob)

	date, err := ParseDate("2025-03-14")
	require.NoError(t, err)

	entry, err := svc.Create(aliceCtx, Input{Title: "Concurrency in Go", Date: date, DurationMinutes: 90})
	require.NoError(t, err)
	assert.Equal(t, models.ProgressPlanned, entry.Status)
	require.NotNil(t, entry.Date)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *entry.Date)

	t.Run("rejects bad input", func(t *testing.T) {
		cases := map[string]Input{
			"missing title":     {Status: models.ProgressCompleted},
			"unknown status":    {Title: "x", Status: "abandoned"},
			"negative duration": {Title: "x", DurationMinutes: -5},
		}
		for name, input := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.Create(aliceCtx, input)
				assert.ErrorIs(t, err, services.ErrInvalidInput)
			})
		}

		_, err := ParseDate("14/03/2025")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("reads are owner scoped", func(t *testing.T) {
		got, err := svc.Get(aliceCtx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 90, got.DurationMinutes)

		_, err = svc.Get(bobCtx, entry.ID)
		assert.ErrorIs(t, err, auth.ErrForbidden)

		mine, err := svc.List(bobCtx)
		require.NoError(t, err)
		assert.Empty(t, mine)

		_, err = svc.ListAll(aliceCtx)
		assert.ErrorIs(t, err, auth.ErrForbidden)
	})

	t.Run("update", func(t *testing.T) {
		_, err := svc.Update(bobCtx, entry.ID, Input{Title: "mine"})
		assert.ErrorIs(t, err, auth.ErrForbidden)

		updated, err := svc.Update(aliceCtx, entry.ID, Input{Title: "Concurrency in Go", Status: models.ProgressCompleted, DurationMinutes: 120})
		require.NoError(t, err)
		assert.Equal(t, models.ProgressCompleted, updated.Status)
		assert.Nil(t, updated.Date)

		got, err := svc.Get(aliceCtx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 120, got.DurationMinutes)
		assert.Equal(t, models.ProgressCompleted, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(bobCtx, entry.ID), auth.ErrForbidden)
		require.NoError(t, svc.Delete(aliceCtx, entry.ID))
		_, err := svc.Get(aliceCtx, entry.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestProgress_Public(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(Dependencies{
		Progress:   repository.NewBunProgressRepository(db),
		Policy:     auth.NewPolicy(nil),
		Visibility: config.VisibilityPublic,
	})
	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)

	entry, err := svc.Create(dbtest.AsUser(alice), Input{Title: "SQL joins", Status: models.ProgressInProgress})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "SQL joins", got.Title)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
