package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

// BunFollowRepository implements FollowRepository on the follows table.
type BunFollowRepository struct {
	db bun.IDB
}

// NewBunFollowRepository creates a new Bun-based follow repository
func NewBunFollowRepository(db bun.IDB) *BunFollowRepository {
	return &BunFollowRepository{db: db}
}

// Follow inserts the edge. A concurrent or repeated follow is absorbed by the
// composite primary key and reported as created=false.
func (r *BunFollowRepository) Follow(ctx context.Context, followerID, followeeID string, at time.Time) (bool, error) {
	edge := &models.Follow{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: at.UTC()}
	result, err := r.db.NewInsert().
		Model(edge).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("follow: %w", classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("follow: get rows affected: %w", err)
	}
	return n > 0, nil
}

// Unfollow removes the edge. Removing a missing edge is not an error.
func (r *BunFollowRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.NewDelete().
		Model((*models.Follow)(nil)).
		Where("follower_id = ?", followerID).
		Where("followee_id = ?", followeeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

// IsFollowing reports whether the edge exists.
func (r *BunFollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Follow)(nil)).
		Where("follower_id = ?", followerID).
		Where("followee_id = ?", followeeID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

// ListFollowers returns the users following userID, most recent first.
func (r *BunFollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.User, error) {
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Join("JOIN follows AS f ON f.follower_id = u.id").
		Where("f.followee_id = ?", userID).
		OrderExpr("f.created_at DESC, u.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// ListFollowing returns the users userID follows, most recent first.
func (r *BunFollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.User, error) {
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Join("JOIN follows AS f ON f.followee_id = u.id").
		Where("f.follower_id = ?", userID).
		OrderExpr("f.created_at DESC, u.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}
