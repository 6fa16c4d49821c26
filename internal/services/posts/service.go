package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
	"github.com/terraconstructs/skillshare/internal/storage"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

const tracerName = "skillapi/services/posts"

// MaxImagesPerPost bounds the image list of a single post.
const MaxImagesPerPost = 10

// Input holds the fields of a new post.
type Input struct {
	Description string
	ImageURLs   []string
	VideoURL    string
}

// Update holds optional post changes; nil fields are left unchanged.
type Update struct {
	Description *string
	ImageURLs   *[]string
	VideoURL    *string
}

// Upload is one file of a multipart post.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Service orchestrates post persistence, media and likes.
type Service struct {
	posts      repository.PostRepository
	policy     *auth.Policy
	blobs      storage.BlobStore
	notifier   notifications.Notifier
	visibility config.Visibility
	now        func() time.Time
}

// Dependencies contains everything a posts Service needs.
type Dependencies struct {
	Posts      repository.PostRepository
	Policy     *auth.Policy
	Blobs      storage.BlobStore      // optional, required for uploads
	Notifier   notifications.Notifier // optional
	Visibility config.Visibility
}

// NewService constructs a new Service instance.
func NewService(deps Dependencies) *Service {
	return &Service{
		posts:      deps.Posts,
		policy:     deps.Policy,
		blobs:      deps.Blobs,
		notifier:   deps.Notifier,
		visibility: deps.Visibility,
		now:        time.Now,
	}
}

// Create stores a post owned by the caller.
func (s *Service) Create(ctx context.Context, input Input) (*models.Post, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	owner := principal.ID
	return s.create(ctx, &owner, input, nil)
}

// CreateWithImages uploads files as images and stores a post referencing them.
// If anything fails, uploads made so far are removed again.
func (s *Service) CreateWithImages(ctx context.Context, description string, files []Upload) (*models.Post, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if s.blobs == nil {
		return nil, errors.New("blob storage is not configured")
	}
	if len(files) > MaxImagesPerPost {
		return nil, services.InvalidInput("at most %d images per post", MaxImagesPerPost)
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.blobs.Store(ctx, f.Body, f.Filename, storage.CategoryImage)
		if err != nil {
			s.deleteBlobs(ctx, urls)
			return nil, fmt.Errorf("store image %q: %w", f.Filename, err)
		}
		urls = append(urls, url)
	}

	owner := principal.ID
	post, err := s.create(ctx, &owner, Input{Description: description, ImageURLs: urls}, urls)
	if err != nil {
		s.deleteBlobs(ctx, urls)
		return nil, err
	}
	return post, nil
}

// CreateSystem stores a system-owned announcement. Requires the
// post:create-system grant.
func (s *Service) CreateSystem(ctx context.Context, input Input) (*models.Post, error) {
	if err := s.policy.AssertRole(ctx, auth.ObjectTypePost, auth.PostCreateSystem); err != nil {
		return nil, err
	}
	return s.create(ctx, nil, input, nil)
}

// Get returns a single post subject to the visibility policy.
func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(post.OwnerID)); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns every post under public visibility and the caller's posts
// under owner-scoped visibility. Newest first.
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	if s.visibility == config.VisibilityPublic {
		return s.ListAll(ctx)
	}
	return s.ListMine(ctx)
}

// ListAll returns every post. Only available under public visibility.
func (s *Service) ListAll(ctx context.Context) ([]models.Post, error) {
	if err := services.RequirePublic(s.visibility); err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListMine returns the caller's posts.
func (s *Service) ListMine(ctx context.Context) ([]models.Post, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("list own posts: %w", err)
	}
	return posts, nil
}

// Feed returns posts by identities the caller follows.
func (s *Service) Feed(ctx context.Context) ([]models.Post, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListFollowed(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("list followed posts: %w", err)
	}
	return posts, nil
}

// Update applies changes to a post the caller owns.
func (s *Service) Update(ctx context.Context, id string, update Update) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "posts.Update", attribute.String(telemetry.AttrPostID, id))
	defer span.End()

	post, err := s.loadForMutation(ctx, id, auth.PostUpdate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if update.Description != nil {
		post.Description = strings.TrimSpace(*update.Description)
	}
	if update.ImageURLs != nil {
		if len(*update.ImageURLs) > MaxImagesPerPost {
			return nil, services.InvalidInput("at most %d images per post", MaxImagesPerPost)
		}
		post.ImageURLs = models.StringList(*update.ImageURLs)
	}
	if update.VideoURL != nil {
		post.VideoURL = strings.TrimSpace(*update.VideoURL)
	}
	if err := validateContent(post.Description, post.ImageURLs, post.VideoURL); err != nil {
		return nil, err
	}

	if err := s.posts.Update(ctx, post); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// Delete removes a post the caller owns, then the blobs it uploaded (best effort).
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "posts.Delete", attribute.String(telemetry.AttrPostID, id))
	defer span.End()

	post, err := s.loadForMutation(ctx, id, auth.PostDelete)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("delete post: %w", err)
	}

	s.deleteBlobs(ctx, post.UploadedURLs)
	return nil
}

// RemoveImage detaches url from a post the caller owns. The blob is deleted
// only when this post uploaded it.
func (s *Service) RemoveImage(ctx context.Context, id, url string) (*models.Post, error) {
	post, err := s.loadForMutation(ctx, id, auth.PostUpdate)
	if err != nil {
		return nil, err
	}
	if !post.ImageURLs.Contains(url) {
		return nil, services.InvalidInput("image is not attached to this post")
	}

	owned := post.UploadedURLs.Contains(url)
	post.ImageURLs = post.ImageURLs.Without(url)
	post.UploadedURLs = post.UploadedURLs.Without(url)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if owned {
		s.deleteBlobs(ctx, []string{url})
	}
	return post, nil
}

// Like records the caller's like and notifies the post owner.
// Liking twice is invalid input.
func (s *Service) Like(ctx context.Context, id string) (*models.Post, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(post.OwnerID)); err != nil {
		return nil, err
	}

	if err := s.posts.Like(ctx, id, principal.ID, s.now()); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, services.InvalidInput("post already liked")
		}
		return nil, fmt.Errorf("like post: %w", err)
	}

	if owner, ok := auth.OwnerFromColumn(post.OwnerID).(auth.OwnedBy); ok && s.notifier != nil {
		s.notifier.Notify(ctx, notifications.Event{
			RecipientID: owner.ID,
			ActorID:     principal.ID,
			Type:        models.NotificationLike,
			Message:     fmt.Sprintf("%s liked your post", principal.Username),
			TargetID:    post.ID,
		})
	}
	return s.reload(ctx, id)
}

// Unlike removes the caller's like. Unliking a post not liked is invalid input.
func (s *Service) Unlike(ctx context.Context, id string) (*models.Post, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(post.OwnerID)); err != nil {
		return nil, err
	}

	if err := s.posts.Unlike(ctx, id, principal.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, services.InvalidInput("post not liked")
		}
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	return s.reload(ctx, id)
}

// create stores a post. uploaded names the blobs stored for it by this service.
func (s *Service) create(ctx context.Context, ownerID *string, input Input, uploaded []string) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "posts.Create")
	defer span.End()

	description := strings.TrimSpace(input.Description)
	video := strings.TrimSpace(input.VideoURL)
	if len(input.ImageURLs) > MaxImagesPerPost {
		return nil, services.InvalidInput("at most %d images per post", MaxImagesPerPost)
	}
	if err := validateContent(description, input.ImageURLs, video); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:          bunx.NewUUIDv7(),
		OwnerID:     ownerID,
		Description: description,
		ImageURLs:   models.StringList(append([]string{}, input.ImageURLs...)),
		VideoURL:    video,
		CreatedAt:   s.now().UTC(),

		UploadedURLs: models.StringList(append([]string{}, uploaded...)),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create post: %w", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrPostID, post.ID))
	return post, nil
}

func (s *Service) loadForMutation(ctx context.Context, id, action string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if err := s.policy.AssertOwner(ctx, auth.OwnerFromColumn(post.OwnerID), auth.ObjectTypePost, action); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) reload(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// deleteBlobs removes media after its post is gone. Failures are logged only.
func (s *Service) deleteBlobs(ctx context.Context, urls []string) {
	if s.blobs == nil {
		return
	}
	for _, url := range urls {
		if err := s.blobs.Delete(ctx, url); err != nil {
			log.Printf("posts: failed to delete blob %s: %v", url, err)
		}
	}
}

func validateContent(description string, images []string, video string) error {
	if description == "" && len(images) == 0 && video == "" {
		return services.InvalidInput("a post needs a description or media")
	}
	return nil
}
