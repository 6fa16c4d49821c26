package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

// BunFeedRepository implements FeedRepository using Bun ORM
type BunFeedRepository struct {
	db bun.IDB
}

// NewBunFeedRepository creates a new Bun-based feed repository
func NewBunFeedRepository(db bun.IDB) *BunFeedRepository {
	return &BunFeedRepository{db: db}
}

func (r *BunFeedRepository) Create(ctx context.Context, feed *models.Feed) error {
	stampCreate(&feed.CreatedAt, &feed.UpdatedAt)
	if _, err := r.db.NewInsert().Model(feed).Exec(ctx); err != nil {
		return fmt.Errorf("create feed: %w", classify(err))
	}
	return nil
}

func (r *BunFeedRepository) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	feed := new(models.Feed)
	if err := r.db.NewSelect().Model(feed).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, fmt.Errorf("get feed: %w", classify(err))
	}
	return feed, nil
}

// Update renames or re-describes a feed. A name clash yields ErrAlreadyExists.
func (r *BunFeedRepository) Update(ctx context.Context, feed *models.Feed) error {
	feed.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(feed).
		Column("name", "description", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update feed: %w", classify(err))
	}
	return expectRows(result, "update feed")
}

func (r *BunFeedRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Feed)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return expectRows(result, "delete feed")
}

func (r *BunFeedRepository) List(ctx context.Context) ([]models.Feed, error) {
	var feeds []models.Feed
	if err := r.db.NewSelect().Model(&feeds).OrderExpr(newestFirst).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

func (r *BunFeedRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Feed, error) {
	var feeds []models.Feed
	err := r.db.NewSelect().
		Model(&feeds).
		Where("owner_id = ?", ownerID).
		OrderExpr(newestFirst).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds by owner: %w", err)
	}
	return feeds, nil
}

// AddPost adds postID to feedID. Unknown feed or post yields ErrNotFound.
func (r *BunFeedRepository) AddPost(ctx context.Context, feedID, postID string, at time.Time) error {
	member := &models.FeedPost{FeedID: feedID, PostID: postID, AddedAt: at.UTC()}
	_, err := r.db.NewInsert().
		Model(member).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add post to feed: %w", classify(err))
	}
	return nil
}

func (r *BunFeedRepository) RemovePost(ctx context.Context, feedID, postID string) error {
	result, err := r.db.NewDelete().
		Model((*models.FeedPost)(nil)).
		Where("feed_id = ?", feedID).
		Where("post_id = ?", postID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove post from feed: %w", err)
	}
	return expectRows(result, "remove post from feed")
}

// ListPosts returns the feed's posts, most recently added first.
func (r *BunFeedRepository) ListPosts(ctx context.Context, feedID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.NewSelect().
		Model(&posts).
		ColumnExpr("p.*").
		ColumnExpr(likeCountExpr).
		Join("JOIN feed_posts AS fp ON fp.post_id = p.id").
		Where("fp.feed_id = ?", feedID).
		OrderExpr("fp.added_at DESC, p.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feed posts: %w", err)
	}
	return posts, nil
}
