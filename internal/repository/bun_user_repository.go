package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db bun.IDB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db bun.IDB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// Create inserts a new user. Duplicate email or username yields ErrAlreadyExists.
func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	stampCreate(&user.CreatedAt, &user.UpdatedAt)
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("create user: %w", classify(err))
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *BunUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by their email
func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername retrieves a user by their username
func (r *BunUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByResetTokenHash retrieves the user holding an outstanding reset token.
func (r *BunUserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.getBy(ctx, "reset_token_hash", hash)
}

func (r *BunUserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("? = ?", bun.Ident(column), value).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, classify(err))
	}
	return user, nil
}

// UpdateProfile writes the editable profile fields.
func (r *BunUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.updateByID(ctx, "update profile", user.ID, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("name = ?", user.Name).
			Set("bio = ?", user.Bio).
			Set("profile_picture_url = ?", user.ProfilePictureURL).
			Set("updated_at = ?", user.UpdatedAt)
	})
}

// UpdateLastLogin updates the last_login_at timestamp for a user
func (r *BunUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, "update last login", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("last_login_at = ?", at.UTC())
	})
}

// SetPasswordHash stores a new bcrypt hash and consumes any outstanding reset token.
func (r *BunUserRepository) SetPasswordHash(ctx context.Context, id string, passwordHash string) error {
	return r.updateByID(ctx, "set password hash", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("password_hash = ?", passwordHash).
			Set("reset_token_hash = NULL").
			Set("reset_expires_at = NULL").
			Set("updated_at = ?", time.Now().UTC())
	})
}

// SetResetToken records the hash of a freshly issued password reset token.
func (r *BunUserRepository) SetResetToken(ctx context.Context, id string, hash string, expiresAt time.Time) error {
	return r.updateByID(ctx, "set reset token", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("reset_token_hash = ?", hash).
			Set("reset_expires_at = ?", expiresAt.UTC())
	})
}

// SetDisabled disables (non-nil) or re-enables (nil) an account.
func (r *BunUserRepository) SetDisabled(ctx context.Context, id string, disabledAt *time.Time) error {
	return r.updateByID(ctx, "set disabled", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		if disabledAt == nil {
			return q.Set("disabled_at = NULL").Set("updated_at = ?", time.Now().UTC())
		}
		return q.Set("disabled_at = ?", disabledAt.UTC()).Set("updated_at = ?", time.Now().UTC())
	})
}

// SetRole changes the account role.
func (r *BunUserRepository) SetRole(ctx context.Context, id string, role string) error {
	return r.updateByID(ctx, "set role", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("role = ?", role).Set("updated_at = ?", time.Now().UTC())
	})
}

func (r *BunUserRepository) updateByID(ctx context.Context, op, id string, set func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	q := r.db.NewUpdate().Model((*models.User)(nil)).Where("id = ?", id)
	result, err := set(q).Exec(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return expectRows(result, op)
}

// List retrieves all users
func (r *BunUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
