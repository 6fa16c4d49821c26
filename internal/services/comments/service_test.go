package comments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/dbtest"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
)

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notifications.Event) {
	r.events = append(r.events, e)
}

func TestComments(t *testing.T) {
	db := dbtest.New(t)
	posts := repository.NewBunPostRepository(db)
	events := &recordingNotifier{}
	svc := NewService(Dependencies{
		Comments:   repository.NewBunCommentRepository(db),
		Posts:      posts,
		Policy:     auth.NewPolicy(nil),
		Notifier:   events,
		Visibility: config.VisibilityPublic,
	})

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)
	aliceCtx, bobCtx := dbtest.AsUser(alice), dbtest.AsUser(bob)

	post := &models.Post{ID: bunx.NewUUIDv7(), OwnerID: &alice.ID, Description: "discuss"}
	require.NoError(t, posts.Create(context.Background(), post))

	t.Run("create validates", func(t *testing.T) {
		_, err := svc.Create(bobCtx, post.ID, "  ")
		assert.ErrorIs(t, err, services.ErrInvalidInput)

		_, err = svc.Create(bobCtx, bunx.NewUUIDv7(), "hello")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = svc.Create(context.Background(), post.ID, "hello")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	first, err := svc.Create(bobCtx, post.ID, "nice post")
	require.NoError(t, err)
	second, err := svc.Create(aliceCtx, post.ID, "thanks")
	require.NoError(t, err)

	require.Len(t, events.events, 2)
	assert.Equal(t, notifications.Event{
		RecipientID: alice.ID,
		ActorID:     bob.ID,
		Type:        models.NotificationComment,
		Message:     "bob commented on your post",
		TargetID:    post.ID,
	}, events.events[0])

	t.Run("list oldest first", func(t *testing.T) {
		list, err := svc.ListByPost(bobCtx, post.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("only the author edits", func(t *testing.T) {
		_, err := svc.Update(aliceCtx, first.ID, "rewritten by alice")
		assert.ErrorIs(t, err, auth.ErrForbidden)

		updated, err := svc.Update(bobCtx, first.ID, "very nice post")
		require.NoError(t, err)
		assert.Equal(t, "very nice post", updated.Content)
	})

	t.Run("only the author deletes", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(aliceCtx, first.ID), auth.ErrForbidden)
		require.NoError(t, svc.Delete(bobCtx, first.ID))
		assert.ErrorIs(t, svc.Delete(bobCtx, first.ID), repository.ErrNotFound)
	})

	t.Run("system comment needs a role", func(t *testing.T) {
		system := &models.Comment{ID: bunx.NewUUIDv7(), PostID: post.ID, Content: "pinned by staff"}
		require.NoError(t, repository.NewBunCommentRepository(db).Create(context.Background(), system))

		_, err := svc.Update(aliceCtx, system.ID, "mine now")
		assert.ErrorIs(t, err, auth.ErrForbidden)
		assert.ErrorIs(t, svc.Delete(bobCtx, system.ID), auth.ErrForbidden)
	})
}

func TestComments_PublicVisibilityAllowsAnonymousRead(t *testing.T) {
	db := dbtest.New(t)
	posts := repository.NewBunPostRepository(db)
	svc := NewService(Dependencies{
		Comments:   repository.NewBunCommentRepository(db),
		Posts:      posts,
		Policy:     auth.NewPolicy(nil),
		Visibility: config.VisibilityPublic,
	})
	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	post := &models.Post{ID: bunx.NewUUIDv7(), OwnerID: &alice.ID, Description: "open"}
	require.NoError(t, posts.Create(context.Background(), post))

	_, err := svc.Create(dbtest.AsUser(alice), post.ID, "first")
	require.NoError(t, err)

	list, err := svc.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestComments_OwnerScopedRequiresReadAccess(t *testing.T) {
	db := dbtest.New(t)
	posts := repository.NewBunPostRepository(db)
	events := &recordingNotifier{}
	svc := NewService(Dependencies{
		Comments:   repository.NewBunCommentRepository(db),
		Posts:      posts,
		Policy:     auth.NewPolicy(nil),
		Notifier:   events,
		Visibility: config.VisibilityOwnerScoped,
	})
	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)
	aliceCtx, bobCtx := dbtest.AsUser(alice), dbtest.AsUser(bob)

	private := &models.Post{ID: bunx.NewUUIDv7(), OwnerID: &alice.ID, Description: "diary"}
	require.NoError(t, posts.Create(context.Background(), private))

	_, err := svc.Create(bobCtx, private.ID, "peeking")
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.Empty(t, events.events)

	_, err = svc.Create(aliceCtx, private.ID, "note to self")
	require.NoError(t, err)

	_, err = svc.ListByPost(bobCtx, private.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = svc.ListByPost(context.Background(), private.ID)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	list, err := svc.ListByPost(aliceCtx, private.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	t.Run("system posts are open to any identity", func(t *testing.T) {
		announcement := &models.Post{ID: bunx.NewUUIDv7(), Description: "welcome"}
		require.NoError(t, posts.Create(context.Background(), announcement))

		_, err := svc.Create(bobCtx, announcement.ID, "hello")
		require.NoError(t, err)
		list, err := svc.ListByPost(aliceCtx, announcement.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
