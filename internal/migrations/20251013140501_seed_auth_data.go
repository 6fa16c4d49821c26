package migrations

import (
	"context"
	"fmt"

	"github.com/terraconstructs/skillshare/internal/auth"
	casbinbunadapter "github.com/terraconstructs/skillshare/internal/auth/bunadapter"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20251013140501, down_20251013140501)
}

// up_20251013140501 seeds the default Casbin policies
func up_20251013140501(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] seeding default Casbin policies...")

	defaultPolicies := auth.DefaultPolicies()
	_, err := db.NewInsert().
		Model(&defaultPolicies).
		On("CONFLICT (ptype, v0, v1, v2, v3, v4, v5) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed Casbin policies: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20251013140501 removes seeded policies
func down_20251013140501(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] removing seeded Casbin policies...")

	_, err := db.NewDelete().
		Model((*casbinbunadapter.CasbinRule)(nil)).
		Where("v0 IN (?)", bun.In(auth.SeededRoles())).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove seeded policies: %w", err)
	}
	fmt.Println(" OK")

	return nil
}
