package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

const tracerName = "skillapi/services/feeds"

// Input holds the editable fields of a feed.
type Input struct {
	Name        string
	Description string
}

// Service manages named post collections.
type Service struct {
	feeds      repository.FeedRepository
	posts      repository.PostRepository
	policy     *auth.Policy
	visibility config.Visibility
	now        func() time.Time
}

// Dependencies contains everything a feeds Service needs.
type Dependencies struct {
	Feeds      repository.FeedRepository
	Posts      repository.PostRepository
	Policy     *auth.Policy
	Visibility config.Visibility
}

// NewService constructs a new Service instance.
func NewService(deps Dependencies) *Service {
	return &Service{
		feeds:      deps.Feeds,
		posts:      deps.Posts,
		policy:     deps.Policy,
		visibility: deps.Visibility,
		now:        time.Now,
	}
}

// Create stores a feed owned by the caller. Names are unique per owner.
func (s *Service) Create(ctx context.Context, input Input) (*models.Feed, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	input, err = normalize(input)
	if err != nil {
		return nil, err
	}

	owner := principal.ID
	feed := &models.Feed{
		ID:          bunx.NewUUIDv7(),
		OwnerID:     &owner,
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.feeds.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}
	return feed, nil
}

// List returns the caller's feeds, newest first.
func (s *Service) List(ctx context.Context) ([]models.Feed, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	feeds, err := s.feeds.ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("list own feeds: %w", err)
	}
	return feeds, nil
}

// ListAll returns every feed. Only available under public visibility.
func (s *Service) ListAll(ctx context.Context) ([]models.Feed, error) {
	if err := services.RequirePublic(s.visibility); err != nil {
		return nil, err
	}
	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// Get returns a feed subject to the visibility policy.
func (s *Service) Get(ctx context.Context, id string) (*models.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(feed.OwnerID)); err != nil {
		return nil, err
	}
	return feed, nil
}

// Posts returns the posts of a readable feed, most recently added first.
func (s *Service) Posts(ctx context.Context, id string) ([]models.Post, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	posts, err := s.feeds.ListPosts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list feed posts: %w", err)
	}
	return posts, nil
}

// Update renames or re-describes a feed the caller owns.
func (s *Service) Update(ctx context.Context, id string, input Input) (*models.Feed, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "feeds.Update", attribute.String(telemetry.AttrFeedID, id))
	defer span.End()

	input, err := normalize(input)
	if err != nil {
		return nil, err
	}
	feed, err := s.loadForMutation(ctx, id, auth.FeedUpdate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	feed.Name = input.Name
	feed.Description = input.Description
	if err := s.feeds.Update(ctx, feed); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update feed: %w", err)
	}
	return feed, nil
}

// Delete removes a feed the caller owns. Memberships cascade; posts stay.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.loadForMutation(ctx, id, auth.FeedDelete); err != nil {
		return err
	}
	if err := s.feeds.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return nil
}

// AddPost puts a post the caller can read into a feed the caller owns.
// Adding a post twice is a no-op.
func (s *Service) AddPost(ctx context.Context, feedID, postID string) error {
	if _, err := s.loadForMutation(ctx, feedID, auth.FeedUpdate); err != nil {
		return err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(post.OwnerID)); err != nil {
		return err
	}
	if err := s.feeds.AddPost(ctx, feedID, postID, s.now()); err != nil {
		return fmt.Errorf("add post to feed: %w", err)
	}
	return nil
}

// RemovePost takes a post out of a feed the caller owns.
func (s *Service) RemovePost(ctx context.Context, feedID, postID string) error {
	if _, err := s.loadForMutation(ctx, feedID, auth.FeedUpdate); err != nil {
		return err
	}
	if err := s.feeds.RemovePost(ctx, feedID, postID); err != nil {
		return fmt.Errorf("remove post from feed: %w", err)
	}
	return nil
}

func (s *Service) loadForMutation(ctx context.Context, id, action string) (*models.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if err := s.policy.AssertOwner(ctx, auth.OwnerFromColumn(feed.OwnerID), auth.ObjectTypeFeed, action); err != nil {
		return nil, err
	}
	return feed, nil
}

func normalize(input Input) (Input, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		return input, services.InvalidInput("feed name is required")
	}
	return input, nil
}
