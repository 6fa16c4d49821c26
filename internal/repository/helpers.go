package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// stampCreate fills unset creation timestamps. updated_at starts equal to created_at.
func stampCreate(createdAt, updatedAt *time.Time) {
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
	if updatedAt != nil && updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

func expectRows(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// newestFirst orders listings by creation time with the time-ordered id as tiebreak.
const newestFirst = "?TableAlias.created_at DESC, ?TableAlias.id DESC"

const oldestFirst = "?TableAlias.created_at ASC, ?TableAlias.id ASC"
