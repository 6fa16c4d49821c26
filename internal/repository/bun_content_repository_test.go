package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/dbtest"
	"github.com/terraconstructs/skillshare/internal/db/models"
)

func ptr[T any](v T) *T { return &v }

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestBunPostRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunPostRepository(db)
	follows := NewBunFollowRepository(db)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)
	base := time.Now().UTC().Truncate(time.Second)

	newPost := func(owner *string, desc string, offset time.Duration) *models.Post {
		p := &models.Post{
			ID:          bunx.NewUUIDv7(),
			OwnerID:     owner,
			Description: desc,
			CreatedAt:   base.Add(offset),
		}
		require.NoError(t, repo.Create(ctx, p))
		return p
	}

	a1 := newPost(ptr(alice.ID), "alice first", 0)
	b1 := newPost(ptr(bob.ID), "bob first", time.Second)
	a2 := newPost(ptr(alice.ID), "alice second", 2*time.Second)
	sys := newPost(nil, "announcement", 3*time.Second)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, a1.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice first", got.Description)
		assert.Equal(t, alice.ID, *got.OwnerID)
		assert.Empty(t, got.ImageURLs)

		got, err = repo.GetByID(ctx, sys.ID)
		require.NoError(t, err)
		assert.Nil(t, got.OwnerID)

		_, err = repo.GetByID(ctx, bunx.NewUUIDv7())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		posts, err := repo.List(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff([]string{sys.ID, a2.ID, b1.ID, a1.ID}, postIDs(posts)); diff != "" {
			t.Errorf("List() order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("list by owner", func(t *testing.T) {
		posts, err := repo.ListByOwner(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, a1.ID}, postIDs(posts))
	})

	t.Run("followed posts", func(t *testing.T) {
		posts, err := repo.ListFollowed(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, posts)

		_, err = follows.Follow(ctx, alice.ID, bob.ID, base)
		require.NoError(t, err)

		posts, err = repo.ListFollowed(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{b1.ID}, postIDs(posts))
	})

	t.Run("update refreshes updated_at only", func(t *testing.T) {
		before, err := repo.GetByID(ctx, a1.ID)
		require.NoError(t, err)

		before.Description = "edited"
		before.ImageURLs = models.StringList{"/uploads/image/a.png"}
		require.NoError(t, repo.Update(ctx, before))

		after, err := repo.GetByID(ctx, a1.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", after.Description)
		assert.Equal(t, models.StringList{"/uploads/image/a.png"}, after.ImageURLs)
		assert.True(t, after.CreatedAt.Equal(a1.CreatedAt))
		assert.True(t, after.UpdatedAt.After(after.CreatedAt))
	})

	t.Run("likes", func(t *testing.T) {
		require.NoError(t, repo.Like(ctx, b1.ID, alice.ID, base))
		assert.ErrorIs(t, repo.Like(ctx, b1.ID, alice.ID, base), ErrAlreadyExists)
		require.NoError(t, repo.Like(ctx, b1.ID, bob.ID, base))

		got, err := repo.GetByID(ctx, b1.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.LikeCount)

		require.NoError(t, repo.Unlike(ctx, b1.ID, alice.ID))
		assert.ErrorIs(t, repo.Unlike(ctx, b1.ID, alice.ID), ErrNotFound)

		got, err = repo.GetByID(ctx, b1.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikeCount)

		assert.ErrorIs(t, repo.Like(ctx, bunx.NewUUIDv7(), alice.ID, base), ErrNotFound)
	})

	t.Run("delete cascades likes", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, b1.ID))
		_, err := repo.GetByID(ctx, b1.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		count, err := db.NewSelect().Model((*models.PostLike)(nil)).Where("post_id = ?", b1.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		assert.ErrorIs(t, repo.Delete(ctx, b1.ID), ErrNotFound)
	})
}

func TestBunCommentRepository(t *testing.T) {
	db := dbtest.New(t)
	posts := NewBunPostRepository(db)
	repo := NewBunCommentRepository(db)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	post := &models.Post{ID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), Description: "p"}
	require.NoError(t, posts.Create(ctx, post))

	base := time.Now().UTC()
	first := &models.Comment{ID: bunx.NewUUIDv7(), PostID: post.ID, OwnerID: ptr(alice.ID), Content: "first", CreatedAt: base}
	second := &models.Comment{ID: bunx.NewUUIDv7(), PostID: post.ID, OwnerID: ptr(alice.ID), Content: "second", CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	orphan := &models.Comment{ID: bunx.NewUUIDv7(), PostID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), Content: "x"}
	assert.ErrorIs(t, repo.Create(ctx, orphan), ErrNotFound)

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	first.Content = "edited"
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting the post removes its comments.
	require.NoError(t, posts.Delete(ctx, post.ID))
	comments, err = repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestBunFeedRepository(t *testing.T) {
	db := dbtest.New(t)
	posts := NewBunPostRepository(db)
	repo := NewBunFeedRepository(db)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)

	feed := &models.Feed{ID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), Name: "go"}
	require.NoError(t, repo.Create(ctx, feed))

	t.Run("name unique per owner", func(t *testing.T) {
		dup := &models.Feed{ID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), Name: "go"}
		assert.ErrorIs(t, repo.Create(ctx, dup), ErrAlreadyExists)

		other := &models.Feed{ID: bunx.NewUUIDv7(), OwnerID: ptr(bob.ID), Name: "go"}
		assert.NoError(t, repo.Create(ctx, other))
	})

	t.Run("rename conflict", func(t *testing.T) {
		second := &models.Feed{ID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), Name: "rust"}
		require.NoError(t, repo.Create(ctx, second))

		second.Name = "go"
		assert.ErrorIs(t, repo.Update(ctx, second), ErrAlreadyExists)
	})

	t.Run("membership", func(t *testing.T) {
		p1 := &models.Post{ID: bunx.NewUUIDv7(), OwnerID: ptr(bob.ID), Description: "one"}
		p2 := &models.Post{ID: bunx.NewUUIDv7(), OwnerID: ptr(bob.ID), Description: "two"}
		require.NoError(t, posts.Create(ctx, p1))
		require.NoError(t, posts.Create(ctx, p2))

		base := time.Now().UTC()
		require.NoError(t, repo.AddPost(ctx, feed.ID, p1.ID, base))
		require.NoError(t, repo.AddPost(ctx, feed.ID, p2.ID, base.Add(time.Second)))
		require.NoError(t, repo.AddPost(ctx, feed.ID, p1.ID, base.Add(2*time.Second)), "re-adding is idempotent")

		assert.ErrorIs(t, repo.AddPost(ctx, feed.ID, bunx.NewUUIDv7(), base), ErrNotFound)

		members, err := repo.ListPosts(ctx, feed.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{p2.ID, p1.ID}, postIDs(members))

		require.NoError(t, repo.RemovePost(ctx, feed.ID, p2.ID))
		assert.ErrorIs(t, repo.RemovePost(ctx, feed.ID, p2.ID), ErrNotFound)
	})

	t.Run("list by owner", func(t *testing.T) {
		feeds, err := repo.ListByOwner(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, feeds, 2)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, feed.ID))
		_, err := repo.GetByID(ctx, feed.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunProgressRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunProgressRepository(db)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)

	entry := &models.LearningProgress{
		ID:              bunx.NewUUIDv7(),
		OwnerID:         ptr(alice.ID),
		Title:           "Go concurrency",
		Status:          models.ProgressPlanned,
		DurationMinutes: 30,
	}
	require.NoError(t, repo.Create(ctx, entry))
	require.NoError(t, repo.Create(ctx, &models.LearningProgress{
		ID: bunx.NewUUIDv7(), OwnerID: ptr(bob.ID), Title: "SQL", Status: models.ProgressCompleted,
	}))

	entry.Status = models.ProgressCompleted
	entry.Date = ptr(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Update(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, got.Status)
	require.NotNil(t, got.Date)
	assert.True(t, got.Date.Equal(*entry.Date))

	mine, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, entry.ID, mine[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, entry.ID))
	assert.ErrorIs(t, repo.Delete(ctx, entry.ID), ErrNotFound)
}

func TestBunNotificationRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBunNotificationRepository(db)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, db, "alice", models.RoleUser)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleUser)
	base := time.Now().UTC()

	older := &models.Notification{ID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), ActorID: ptr(bob.ID),
		Type: models.NotificationFollow, Message: "bob followed you", CreatedAt: base}
	newer := &models.Notification{ID: bunx.NewUUIDv7(), OwnerID: ptr(alice.ID), ActorID: ptr(bob.ID),
		Type: models.NotificationLike, Message: "bob liked your post", CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	items, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.False(t, items[0].Read)

	require.NoError(t, repo.MarkRead(ctx, newer.ID, base.Add(time.Minute)))
	got, err := repo.GetByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	bobs, err := repo.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	require.NoError(t, repo.Delete(ctx, older.ID))
	assert.ErrorIs(t, repo.MarkRead(ctx, older.ID, base), ErrNotFound)
}
