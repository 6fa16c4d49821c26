package migrations

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// IsPostgreSQL reports whether migrations run against PostgreSQL.
// Statements using jsonb casts or partial indexes are only issued there.
func IsPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}
