package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestBunUserRepository_TransientErrorIsNotNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBunUserRepository(db)

	connErr := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnError(connErr)

	_, err := repo.GetByID(context.Background(), "0192")
	require.Error(t, err)
	assert.ErrorIs(t, err, connErr)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBunPostRepository_TransientWriteError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBunPostRepository(db)

	mock.ExpectExec(`DELETE FROM "posts"`).WillReturnError(errors.New("disk I/O error"))

	err := repo.Delete(context.Background(), "0192")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	other := errors.New("boom")
	assert.Equal(t, other, classify(other))
}
