package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
)

// Service manages comments on posts.
type Service struct {
	comments   repository.CommentRepository
	posts      repository.PostRepository
	policy     *auth.Policy
	notifier   notifications.Notifier
	visibility config.Visibility
	now        func() time.Time
}

// Dependencies contains everything a comments Service needs.
type Dependencies struct {
	Comments   repository.CommentRepository
	Posts      repository.PostRepository
	Policy     *auth.Policy
	Notifier   notifications.Notifier // optional
	Visibility config.Visibility
}

// NewService constructs a new Service instance.
func NewService(deps Dependencies) *Service {
	return &Service{
		comments:   deps.Comments,
		posts:      deps.Posts,
		policy:     deps.Policy,
		notifier:   deps.Notifier,
		visibility: deps.Visibility,
		now:        time.Now,
	}
}

// Create adds the caller's comment to a post the caller can read and
// notifies the post owner.
func (s *Service) Create(ctx context.Context, postID, content string) (*models.Comment, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, services.InvalidInput("comment content is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(post.OwnerID)); err != nil {
		return nil, err
	}

	owner := principal.ID
	comment := &models.Comment{
		ID:        bunx.NewUUIDv7(),
		PostID:    post.ID,
		OwnerID:   &owner,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if postOwner, ok := auth.OwnerFromColumn(post.OwnerID).(auth.OwnedBy); ok && s.notifier != nil {
		s.notifier.Notify(ctx, notifications.Event{
			RecipientID: postOwner.ID,
			ActorID:     principal.ID,
			Type:        models.NotificationComment,
			Message:     fmt.Sprintf("%s commented on your post", principal.Username),
			TargetID:    post.ID,
		})
	}
	return comment, nil
}

// ListByPost returns a post's comments, oldest first. Comments are readable
// by whoever can read the post.
func (s *Service) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(post.OwnerID)); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update edits a comment the caller owns.
func (s *Service) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, services.InvalidInput("comment content is required")
	}

	comment, err := s.loadForMutation(ctx, id, auth.CommentUpdate)
	if err != nil {
		return nil, err
	}
	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment the caller owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.loadForMutation(ctx, id, auth.CommentDelete); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *Service) loadForMutation(ctx context.Context, id, action string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if err := s.policy.AssertOwner(ctx, auth.OwnerFromColumn(comment.OwnerID), auth.ObjectTypeComment, action); err != nil {
		return nil, err
	}
	return comment, nil
}
