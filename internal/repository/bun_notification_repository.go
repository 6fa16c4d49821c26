package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

// BunNotificationRepository implements NotificationRepository using Bun ORM
type BunNotificationRepository struct {
	db bun.IDB
}

// NewBunNotificationRepository creates a new Bun-based notification repository
func NewBunNotificationRepository(db bun.IDB) *BunNotificationRepository {
	return &BunNotificationRepository{db: db}
}

func (r *BunNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	stampCreate(&n.CreatedAt, &n.UpdatedAt)
	if _, err := r.db.NewInsert().Model(n).Exec(ctx); err != nil {
		return fmt.Errorf("create notification: %w", classify(err))
	}
	return nil
}

func (r *BunNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	n := new(models.Notification)
	if err := r.db.NewSelect().Model(n).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, fmt.Errorf("get notification: %w", classify(err))
	}
	return n, nil
}

// MarkRead flags a notification as read. Marking twice is harmless.
func (r *BunNotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = ?", true).
		Set("updated_at = ?", at.UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return expectRows(result, "mark notification read")
}

func (r *BunNotificationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Notification)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return expectRows(result, "delete notification")
}

// ListByOwner returns the recipient's notifications, newest first.
func (r *BunNotificationRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.NewSelect().
		Model(&items).
		Where("owner_id = ?", ownerID).
		OrderExpr(newestFirst).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}
