package migrations

import (
	"context"
	"fmt"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20251014090000, down_20251014090000)
}

const ownerFK = `("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`

// up_20251014090000 creates posts, likes, comments, feeds, learning progress and notifications
func up_20251014090000(ctx context.Context, db *bun.DB) error {
	steps := []struct {
		name  string
		model any
		fks   []string
	}{
		{"posts", (*models.Post)(nil), []string{ownerFK}},
		{"post_likes", (*models.PostLike)(nil), []string{
			`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`,
			`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
		}},
		{"comments", (*models.Comment)(nil), []string{
			ownerFK,
			`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`,
		}},
		{"feeds", (*models.Feed)(nil), []string{ownerFK}},
		{"feed_posts", (*models.FeedPost)(nil), []string{
			`("feed_id") REFERENCES "feeds" ("id") ON DELETE CASCADE`,
			`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`,
		}},
		{"learning_progress", (*models.LearningProgress)(nil), []string{ownerFK}},
		{"notifications", (*models.Notification)(nil), []string{
			ownerFK,
			`("actor_id") REFERENCES "users" ("id") ON DELETE SET NULL`,
		}},
	}

	for _, step := range steps {
		fmt.Printf(" [up] creating %s table...", step.name)
		q := db.NewCreateTable().Model(step.model).IfNotExists()
		for _, fk := range step.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", step.name, err)
		}
		fmt.Println(" OK")
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_posts_owner_created ON posts(owner_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_feeds_owner_name ON feeds(owner_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_learning_progress_owner ON learning_progress(owner_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_owner ON notifications(owner_id, created_at)`,
	}
	if IsPostgreSQL(db) {
		indexes = append(indexes,
			`ALTER TABLE posts ALTER COLUMN image_urls SET DEFAULT '[]'::jsonb`,
			`ALTER TABLE posts ALTER COLUMN uploaded_urls SET DEFAULT '[]'::jsonb`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(owner_id) WHERE NOT read`,
		)
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// down_20251014090000 drops content tables in dependency order
func down_20251014090000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping content tables...")

	for _, model := range []any{
		(*models.Notification)(nil),
		(*models.LearningProgress)(nil),
		(*models.FeedPost)(nil),
		(*models.Feed)(nil),
		(*models.Comment)(nil),
		(*models.PostLike)(nil),
		(*models.Post)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}
