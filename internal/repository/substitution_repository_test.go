package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

func newSubstitutionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubstitutionRepositoryCreateBatchIsTransactional(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO substitution_records")).
		WithArgs(sqlmock.AnyArg(), "school-1", "abs-1", "slot-1", sqlmock.AnyArg(), "teacher-1", "teacher-2", "PENDING", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO substitution_records")).
		WithArgs(sqlmock.AnyArg(), "school-1", "abs-1", "slot-2", sqlmock.AnyArg(), "teacher-1", "teacher-3", "PENDING", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	records := []models.SubstitutionRecord{
		{SchoolID: "school-1", AbsenceID: "abs-1", SlotID: "slot-1", SlotDate: time.Now(), OriginalTeacherID: "teacher-1", SubstituteTeacherID: "teacher-2", Status: models.SubstitutionPending},
		{SchoolID: "school-1", AbsenceID: "abs-1", SlotID: "slot-2", SlotDate: time.Now(), OriginalTeacherID: "teacher-1", SubstituteTeacherID: "teacher-3", Status: models.SubstitutionPending},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCreateBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO substitution_records")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	records := []models.SubstitutionRecord{
		{SchoolID: "school-1", AbsenceID: "abs-1", SlotID: "slot-1", SlotDate: time.Now(), OriginalTeacherID: "teacher-1", SubstituteTeacherID: "teacher-2", Status: models.SubstitutionPending},
	}
	require.Error(t, repo.CreateBatch(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCancelPendingByAbsence(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE substitution_records SET status = $1, updated_at = $2 WHERE school_id = $3 AND absence_id = $4 AND status = $5")).
		WithArgs(models.SubstitutionCancelled, sqlmock.AnyArg(), "school-1", "abs-1", models.SubstitutionPending).
		WillReturnResult(sqlmock.NewResult(0, 3))

	cancelled, err := repo.CancelPendingByAbsence(context.Background(), "school-1", "abs-1")
	require.NoError(t, err)
	assert.Equal(t, 3, cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCompleteElapsedAll(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE substitution_records SET status = $1, updated_at = $2 WHERE status = $3 AND slot_date < $4")).
		WithArgs(models.SubstitutionCompleted, sqlmock.AnyArg(), models.SubstitutionConfirmed, asOf).
		WillReturnResult(sqlmock.NewResult(0, 5))

	completed, err := repo.CompleteElapsedAll(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 5, completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCompleteElapsedAllSurfacesResultError(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE substitution_records SET status = $1, updated_at = $2 WHERE status = $3 AND slot_date < $4")).
		WillReturnResult(sqlmock.NewErrorResult(assert.AnError))

	_, err := repo.CompleteElapsedAll(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryProgress(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	rows := sqlmock.NewRows([]string{"total", "pending", "confirmed", "declined", "completed", "cancelled"}).
		AddRow(5, 1, 2, 1, 1, 0)
	mock.ExpectQuery("COUNT\\(\\*\\) FILTER").
		WithArgs("school-1", "abs-1").
		WillReturnRows(rows)

	progress, err := repo.Progress(context.Background(), "school-1", "abs-1")
	require.NoError(t, err)
	assert.Equal(t, 5, progress.Total)
	assert.Equal(t, 2, progress.Confirmed)
	assert.False(t, progress.Resolved())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE substitution_records SET status = $1, decline_reason = $2, confirmed_at = $3")).
		WithArgs(models.SubstitutionConfirmed, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), "school-1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now()
	err := repo.UpdateStatus(context.Background(), "school-1", "ghost", models.SubstitutionConfirmed, nil, &now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
