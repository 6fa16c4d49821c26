package progress

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

const tracerName = "skillapi/services/progress"

// DateLayout is the wire format of an entry's date.
const DateLayout = "2006-01-02"

var validStatuses = map[string]bool{
	models.ProgressPlanned:    true,
	models.ProgressInProgress: true,
	models.ProgressCompleted:  true,
}

// Input holds the fields of a learning progress entry. An empty status
// defaults to planned.
type Input struct {
	Title           string
	Description     string
	Status          string
	Date            *time.Time
	DurationMinutes int
}

// Service manages learning progress entries.
type Service struct {
	entries    repository.ProgressRepository
	policy     *auth.Policy
	visibility config.Visibility
	now        func() time.Time
}

// Dependencies contains everything a progress Service needs.
type Dependencies struct {
	Progress   repository.ProgressRepository
	Policy     *auth.Policy
	Visibility config.Visibility
}

// NewService constructs a new Service instance.
func NewService(deps Dependencies) *Service {
	return &Service{
		entries:    deps.Progress,
		policy:     deps.Policy,
		visibility: deps.Visibility,
		now:        time.Now,
	}
}

// Create stores an entry owned by the caller.
func (s *Service) Create(ctx context.Context, input Input) (*models.LearningProgress, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	input, err = normalize(input)
	if err != nil {
		return nil, err
	}

	owner := principal.ID
	entry := &models.LearningProgress{
		ID:        bunx.NewUUIDv7(),
		OwnerID:   &owner,
		CreatedAt: s.now().UTC(),
	}
	apply(entry, input)
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create learning progress: %w", err)
	}
	return entry, nil
}

// List returns the caller's entries, newest first.
func (s *Service) List(ctx context.Context) ([]models.LearningProgress, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("list own learning progress: %w", err)
	}
	return entries, nil
}

// ListAll returns every entry. Only available under public visibility.
func (s *Service) ListAll(ctx context.Context) ([]models.LearningProgress, error) {
	if err := services.RequirePublic(s.visibility); err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list learning progress: %w", err)
	}
	return entries, nil
}

// Get returns an entry subject to the visibility policy.
func (s *Service) Get(ctx context.Context, id string) (*models.LearningProgress, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get learning progress: %w", err)
	}
	if err := services.CanRead(ctx, s.policy, s.visibility, auth.OwnerFromColumn(entry.OwnerID)); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update replaces the fields of an entry the caller owns.
func (s *Service) Update(ctx context.Context, id string, input Input) (*models.LearningProgress, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "progress.Update", attribute.String(telemetry.AttrProgressID, id))
	defer span.End()

	input, err := normalize(input)
	if err != nil {
		return nil, err
	}
	entry, err := s.loadForMutation(ctx, id, auth.ProgressUpdate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	apply(entry, input)
	if err := s.entries.Update(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update learning progress: %w", err)
	}
	return entry, nil
}

// Delete removes an entry the caller owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.loadForMutation(ctx, id, auth.ProgressDelete); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete learning progress: %w", err)
	}
	return nil
}

// ParseDate parses an optional wire date. Empty yields nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, services.InvalidInput("date must be formatted as %s", DateLayout)
	}
	return &t, nil
}

func (s *Service) loadForMutation(ctx context.Context, id, action string) (*models.LearningProgress, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get learning progress: %w", err)
	}
	if err := s.policy.AssertOwner(ctx, auth.OwnerFromColumn(entry.OwnerID), auth.ObjectTypeProgress, action); err != nil {
		return nil, err
	}
	return entry, nil
}

func normalize(input Input) (Input, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Title == "" {
		return input, services.InvalidInput("title is required")
	}
	if input.Status == "" {
		input.Status = models.ProgressPlanned
	}
	if !validStatuses[input.Status] {
		return input, services.InvalidInput("status must be one of planned, in_progress, completed")
	}
	if input.DurationMinutes < 0 {
		return input, services.InvalidInput("duration must not be negative")
	}
	return input, nil
}

func apply(entry *models.LearningProgress, input Input) {
	entry.Title = input.Title
	entry.Description = input.Description
	entry.Status = input.Status
	entry.DurationMinutes = input.DurationMinutes
	if input.Date != nil {
		d := input.Date.UTC()
		entry.Date = &d
	} else {
		entry.Date = nil
	}
}
