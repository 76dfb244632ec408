package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreport/internal/models"
)

func newMockReportRepo(t *testing.T) (*ReportRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(db), mock
}

func TestTransitionWinsWhenStateMatches(t *testing.T) {
	repo, mock := newMockReportRepo(t)

	mock.ExpectExec("UPDATE reports").
		WithArgs(1, "PENDING", "APPROVED", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Transition(1, models.StatePending, models.StateApproved, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionLosesWhenStateMoved(t *testing.T) {
	repo, mock := newMockReportRepo(t)

	// another caller already reviewed the report, zero rows match
	mock.ExpectExec("UPDATE reports").
		WithArgs(1, "PENDING", "APPROVED", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Transition(1, models.StatePending, models.StateApproved, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionCarriesDeclineReason(t *testing.T) {
	repo, mock := newMockReportRepo(t)

	reason := "Duplicate of report #45, already being handled"
	mock.ExpectExec("UPDATE reports").
		WithArgs(1, "PENDING", "DECLINED", &reason).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Transition(1, models.StatePending, models.StateDeclined, &reason)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignOfficerConditionalOnState(t *testing.T) {
	repo, mock := newMockReportRepo(t)

	mock.ExpectExec("UPDATE reports").
		WithArgs(1, 7, "APPROVED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.AssignOfficer(1, 7, models.StateApproved)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDAbsentReturnsNil(t *testing.T) {
	repo, mock := newMockReportRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	report, err := repo.GetByID(99)
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}
