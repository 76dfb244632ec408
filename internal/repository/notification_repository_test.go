package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockNotificationRepo(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNotificationRepository(db), mock
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo, mock := newMockNotificationRepo(t)

	// marking an already read notification still matches one row
	mock.ExpectExec("UPDATE notifications SET read").
		WithArgs(10, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE notifications SET read").
		WithArgs(10, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(42, 10))
	require.NoError(t, repo.MarkRead(42, 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadForeignNotification(t *testing.T) {
	repo, mock := newMockNotificationRepo(t)

	mock.ExpectExec("UPDATE notifications SET read").
		WithArgs(10, 43).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(43, 10)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
