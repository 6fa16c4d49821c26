package repository

import (
	"context"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
)

// UserRepository exposes persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetPasswordHash(ctx context.Context, id string, passwordHash string) error
	SetResetToken(ctx context.Context, id string, hash string, expiresAt time.Time) error
	SetDisabled(ctx context.Context, id string, disabledAt *time.Time) error
	SetRole(ctx context.Context, id string, role string) error
	List(ctx context.Context) ([]models.User, error)
}

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	// Follow returns created=false when the edge already exists.
	Follow(ctx context.Context, followerID, followeeID string, at time.Time) (created bool, err error)
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]models.User, error)
	ListFollowing(ctx context.Context, userID string) ([]models.User, error)
}

// PostRepository exposes persistence operations for posts and their likes.
// Listings are newest first and carry LikeCount.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Post, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Post, error)
	ListFollowed(ctx context.Context, followerID string) ([]models.Post, error)

	// Like returns ErrAlreadyExists for a repeated like.
	Like(ctx context.Context, postID, userID string, at time.Time) error
	// Unlike returns ErrNotFound when the post was not liked by userID.
	Unlike(ctx context.Context, postID, userID string) error
}

// CommentRepository exposes persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
	// ListByPost returns comments oldest first.
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
}

// FeedRepository exposes persistence operations for feeds and feed membership.
type FeedRepository interface {
	// Create returns ErrAlreadyExists when the owner already has a feed with that name.
	Create(ctx context.Context, feed *models.Feed) error
	GetByID(ctx context.Context, id string) (*models.Feed, error)
	Update(ctx context.Context, feed *models.Feed) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Feed, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Feed, error)

	// AddPost is idempotent.
	AddPost(ctx context.Context, feedID, postID string, at time.Time) error
	// RemovePost returns ErrNotFound when the post is not in the feed.
	RemovePost(ctx context.Context, feedID, postID string) error
	ListPosts(ctx context.Context, feedID string) ([]models.Post, error)
}

// ProgressRepository exposes persistence operations for learning progress entries.
type ProgressRepository interface {
	Create(ctx context.Context, entry *models.LearningProgress) error
	GetByID(ctx context.Context, id string) (*models.LearningProgress, error)
	Update(ctx context.Context, entry *models.LearningProgress) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.LearningProgress, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.LearningProgress, error)
}

// NotificationRepository exposes persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Notification, error)
}
