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

func newAbsenceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAbsenceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAbsenceRepoMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_absences")).
		WithArgs(sqlmock.AnyArg(), "school-1", "teacher-1", sqlmock.AnyArg(), sqlmock.AnyArg(), "SICK", nil, "REPORTED", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	absence := &models.TeacherAbsence{
		SchoolID:    "school-1",
		TeacherID:   "teacher-1",
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(0, 0, 1),
		AbsenceType: models.AbsenceSick,
		Status:      models.AbsenceReported,
		IsAllDay:    true,
	}
	require.NoError(t, repo.Create(context.Background(), absence))
	assert.NotEmpty(t, absence.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newAbsenceRepoMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "school_id", "teacher_id", "start_date", "end_date", "absence_type", "reason", "status", "is_all_day", "created_at", "updated_at"}).
		AddRow("abs-1", "school-1", "teacher-1", from, from.AddDate(0, 0, 2), "SICK", nil, "REPORTED", true, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher_absences WHERE school_id = $1 AND teacher_id = $2 AND status = $3 AND end_date >= $4 ORDER BY start_date DESC LIMIT 20 OFFSET 0")).
		WithArgs("school-1", "teacher-1", models.AbsenceReported, from).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teacher_absences WHERE school_id = $1 AND teacher_id = $2 AND status = $3 AND end_date >= $4")).
		WithArgs("school-1", "teacher-1", models.AbsenceReported, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	absences, total, err := repo.List(context.Background(), "school-1", models.AbsenceFilter{
		TeacherID: "teacher-1",
		Status:    models.AbsenceReported,
		From:      &from,
	})
	require.NoError(t, err)
	assert.Len(t, absences, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newAbsenceRepoMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_absences SET status = $1")).
		WithArgs(models.AbsenceApproved, sqlmock.AnyArg(), "school-1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "school-1", "ghost", models.AbsenceApproved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
