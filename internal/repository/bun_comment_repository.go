package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

// BunCommentRepository implements CommentRepository using Bun ORM
type BunCommentRepository struct {
	db bun.IDB
}

// NewBunCommentRepository creates a new Bun-based comment repository
func NewBunCommentRepository(db bun.IDB) *BunCommentRepository {
	return &BunCommentRepository{db: db}
}

// Create inserts a comment. An unknown post yields ErrNotFound.
func (r *BunCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	stampCreate(&comment.CreatedAt, &comment.UpdatedAt)
	if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return fmt.Errorf("create comment: %w", classify(err))
	}
	return nil
}

func (r *BunCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	comment := new(models.Comment)
	if err := r.db.NewSelect().Model(comment).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, fmt.Errorf("get comment: %w", classify(err))
	}
	return comment, nil
}

func (r *BunCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(comment).
		Column("content", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return expectRows(result, "update comment")
}

func (r *BunCommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Comment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectRows(result, "delete comment")
}

func (r *BunCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.NewSelect().
		Model(&comments).
		Where("post_id = ?", postID).
		OrderExpr(oldestFirst).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
