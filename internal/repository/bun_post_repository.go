package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

const likeCountExpr = "(SELECT COUNT(*) FROM post_likes AS pl WHERE pl.post_id = p.id) AS like_count"

// BunPostRepository implements PostRepository using Bun ORM
type BunPostRepository struct {
	db bun.IDB
}

// NewBunPostRepository creates a new Bun-based post repository
func NewBunPostRepository(db bun.IDB) *BunPostRepository {
	return &BunPostRepository{db: db}
}

// Create inserts a new post
func (r *BunPostRepository) Create(ctx context.Context, post *models.Post) error {
	stampCreate(&post.CreatedAt, &post.UpdatedAt)
	if post.ImageURLs == nil {
		post.ImageURLs = models.StringList{}
	}
	if post.UploadedURLs == nil {
		post.UploadedURLs = models.StringList{}
	}
	if _, err := r.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return fmt.Errorf("create post: %w", classify(err))
	}
	return nil
}

// GetByID retrieves a post with its like count
func (r *BunPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post := new(models.Post)
	err := r.selectPosts(post).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", classify(err))
	}
	return post, nil
}

// Update writes the mutable columns and refreshes updated_at
func (r *BunPostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(post).
		Column("description", "image_urls", "video_url", "uploaded_urls", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update post: %w", classify(err))
	}
	return expectRows(result, "update post")
}

// Delete removes a post; likes, comments and feed membership cascade.
func (r *BunPostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Post)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectRows(result, "delete post")
}

// List returns every post, newest first
func (r *BunPostRepository) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.selectPosts(&posts).OrderExpr(newestFirst).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListByOwner returns posts owned by ownerID, newest first
func (r *BunPostRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.selectPosts(&posts).
		Where("p.owner_id = ?", ownerID).
		OrderExpr(newestFirst).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts by owner: %w", err)
	}
	return posts, nil
}

// ListFollowed returns posts authored by identities followerID follows
func (r *BunPostRepository) ListFollowed(ctx context.Context, followerID string) ([]models.Post, error) {
	var posts []models.Post
	followees := r.db.NewSelect().
		Model((*models.Follow)(nil)).
		Column("followee_id").
		Where("follower_id = ?", followerID)

	err := r.selectPosts(&posts).
		Where("p.owner_id IN (?)", followees).
		OrderExpr(newestFirst).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list followed posts: %w", err)
	}
	return posts, nil
}

// Like records userID's like of postID
func (r *BunPostRepository) Like(ctx context.Context, postID, userID string, at time.Time) error {
	like := &models.PostLike{PostID: postID, UserID: userID, CreatedAt: at.UTC()}
	if _, err := r.db.NewInsert().Model(like).Exec(ctx); err != nil {
		return fmt.Errorf("like post: %w", classify(err))
	}
	return nil
}

// Unlike removes userID's like of postID
func (r *BunPostRepository) Unlike(ctx context.Context, postID, userID string) error {
	result, err := r.db.NewDelete().
		Model((*models.PostLike)(nil)).
		Where("post_id = ?", postID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("unlike post: %w", err)
	}
	return expectRows(result, "unlike post")
}

func (r *BunPostRepository) selectPosts(model any) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(model).
		ColumnExpr("p.*").
		ColumnExpr(likeCountExpr)
}
