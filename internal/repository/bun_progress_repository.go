package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

// BunProgressRepository implements ProgressRepository using Bun ORM
type BunProgressRepository struct {
	db bun.IDB
}

// NewBunProgressRepository creates a new Bun-based learning progress repository
func NewBunProgressRepository(db bun.IDB) *BunProgressRepository {
	return &BunProgressRepository{db: db}
}

func (r *BunProgressRepository) Create(ctx context.Context, entry *models.LearningProgress) error {
	stampCreate(&entry.CreatedAt, &entry.UpdatedAt)
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("create learning progress: %w", classify(err))
	}
	return nil
}

func (r *BunProgressRepository) GetByID(ctx context.Context, id string) (*models.LearningProgress, error) {
	entry := new(models.LearningProgress)
	if err := r.db.NewSelect().Model(entry).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, fmt.Errorf("get learning progress: %w", classify(err))
	}
	return entry, nil
}

func (r *BunProgressRepository) Update(ctx context.Context, entry *models.LearningProgress) error {
	entry.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(entry).
		Column("title", "description", "status", "date", "duration_minutes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update learning progress: %w", err)
	}
	return expectRows(result, "update learning progress")
}

func (r *BunProgressRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.LearningProgress)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete learning progress: %w", err)
	}
	return expectRows(result, "delete learning progress")
}

func (r *BunProgressRepository) List(ctx context.Context) ([]models.LearningProgress, error) {
	var entries []models.LearningProgress
	if err := r.db.NewSelect().Model(&entries).OrderExpr(newestFirst).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list learning progress: %w", err)
	}
	return entries, nil
}

func (r *BunProgressRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.LearningProgress, error) {
	var entries []models.LearningProgress
	err := r.db.NewSelect().
		Model(&entries).
		Where("owner_id = ?", ownerID).
		OrderExpr(newestFirst).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list learning progress by owner: %w", err)
	}
	return entries, nil
}
