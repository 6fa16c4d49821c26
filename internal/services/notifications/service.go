package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

const tracerName = "skillapi/services/notifications"

// Event describes something that happened to RecipientID's content.
type Event struct {
	RecipientID string
	ActorID     string
	Type        string
	Message     string
	TargetID    string
}

// Notifier records events for their recipient. Delivery is best effort:
// implementations log failures instead of returning them, so the action that
// triggered the event never fails because of it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Service owns the notification inbox of each identity.
type Service struct {
	repo   repository.NotificationRepository
	hub    *Hub
	policy *auth.Policy
	now    func() time.Time
}

var _ Notifier = (*Service)(nil)

// NewService constructs a notification Service. hub may be nil when no live
// streams are served.
func NewService(repo repository.NotificationRepository, hub *Hub, policy *auth.Policy) *Service {
	return &Service{
		repo:   repo,
		hub:    hub,
		policy: policy,
		now:    time.Now,
	}
}

// Notify implements Notifier. Events without a recipient (system content) or
// aimed at the actor themselves are dropped.
func (s *Service) Notify(ctx context.Context, event Event) {
	if event.RecipientID == "" || event.RecipientID == event.ActorID {
		return
	}

	recipient := event.RecipientID
	n := &models.Notification{
		ID:        bunx.NewUUIDv7(),
		OwnerID:   &recipient,
		Type:      event.Type,
		Message:   event.Message,
		TargetID:  event.TargetID,
		CreatedAt: s.now().UTC(),
	}
	if event.ActorID != "" {
		actor := event.ActorID
		n.ActorID = &actor
	}

	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notifications: failed to record %s for %s: %v", event.Type, recipient, err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(*n)
	}
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context) ([]models.Notification, error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead flags a notification as read. Only its recipient may do so.
func (s *Service) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "notifications.MarkRead",
		attribute.String(telemetry.AttrNotificationID, id),
	)
	defer span.End()

	n, err := s.load(ctx, id, auth.NotificationUpdate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if n.Read {
		return n, nil
	}

	now := s.now().UTC()
	if err := s.repo.MarkRead(ctx, id, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.Read = true
	n.UpdatedAt = now
	return n, nil
}

// Delete removes a notification. Only its recipient may do so.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id, auth.NotificationDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// Subscribe opens a live stream of new notifications for the caller.
func (s *Service) Subscribe(ctx context.Context) (<-chan models.Notification, func(), error) {
	principal, err := s.policy.AssertAuthenticated(ctx)
	if err != nil {
		return nil, nil, err
	}
	if s.hub == nil {
		return nil, nil, fmt.Errorf("notification streaming is not enabled")
	}
	ch, cancel := s.hub.Subscribe(principal.ID)
	return ch, cancel, nil
}

func (s *Service) load(ctx context.Context, id, action string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if err := s.policy.AssertOwner(ctx, auth.OwnerFromColumn(n.OwnerID), auth.ObjectTypeNotification, action); err != nil {
		return nil, err
	}
	return n, nil
}
