package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

func newWeekConfigRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWeekConfigRepositoryFindByTerm(t *testing.T) {
	db, mock, cleanup := newWeekConfigRepoMock(t)
	defer cleanup()
	repo := NewWeekConfigRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "term_id", "working_days", "lunch_after_period", "class_overrides", "created_at", "updated_at"}).
		AddRow("wc-1", "school-1", "term-1", "{0,1,2,3,4}", 4, []byte(`{"class-9a":3}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM week_configs WHERE school_id = $1 AND term_id = $2")).
		WithArgs("school-1", "term-1").
		WillReturnRows(rows)

	cfg, err := repo.FindByTerm(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	assert.Equal(t, pq.Int64Array{0, 1, 2, 3, 4}, cfg.WorkingDays)
	assert.Equal(t, 4, cfg.LunchAfterPeriod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekConfigRepositoryFindDefault(t *testing.T) {
	db, mock, cleanup := newWeekConfigRepoMock(t)
	defer cleanup()
	repo := NewWeekConfigRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM week_configs WHERE school_id = $1 AND term_id IS NULL")).
		WithArgs("school-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDefault(context.Background(), "school-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekConfigRepositoryUpsertTermScoped(t *testing.T) {
	db, mock, cleanup := newWeekConfigRepoMock(t)
	defer cleanup()
	repo := NewWeekConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (school_id, term_id)")).
		WithArgs(sqlmock.AnyArg(), "school-1", "term-1", sqlmock.AnyArg(), 4, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	termID := "term-1"
	cfg := &models.WeekConfig{
		SchoolID:         "school-1",
		TermID:           &termID,
		WorkingDays:      pq.Int64Array{0, 1, 2, 3, 4},
		LunchAfterPeriod: 4,
	}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	assert.NotEmpty(t, cfg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekConfigRepositoryUpsertSchoolDefault(t *testing.T) {
	db, mock, cleanup := newWeekConfigRepoMock(t)
	defer cleanup()
	repo := NewWeekConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (school_id) WHERE term_id IS NULL")).
		WithArgs(sqlmock.AnyArg(), "school-1", nil, sqlmock.AnyArg(), 5, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := &models.WeekConfig{
		SchoolID:         "school-1",
		WorkingDays:      pq.Int64Array{1, 2, 3, 4, 5},
		LunchAfterPeriod: 5,
	}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	assert.NoError(t, mock.ExpectationsWereMet())
}
