package migrations

import (
	"context"
	"fmt"

	casbinbunadapter "github.com/terraconstructs/skillshare/internal/auth/bunadapter"
	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20251013140500, down_20251013140500)
}

// up_20251013140500 creates identity tables: users, follows and casbin_rules
func up_20251013140500(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`)
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating follows table...")
	_, err = db.NewCreateTable().
		Model((*models.Follow)(nil)).
		IfNotExists().
		ForeignKey(`("follower_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		ForeignKey(`("followee_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create follows table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id)`)
	if err != nil {
		return fmt.Errorf("failed to create follows followee index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating casbin_rules table...")
	_, err = db.NewCreateTable().
		Model((*casbinbunadapter.CasbinRule)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create casbin_rules table: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20251013140500 drops identity tables
func down_20251013140500(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping identity tables...")

	for _, model := range []any{
		(*casbinbunadapter.CasbinRule)(nil),
		(*models.Follow)(nil),
		(*models.User)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}
