package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

func newSlotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func slotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "school_id", "term_id", "day_of_week", "period_id", "class_id", "subject_id", "teacher_id", "classroom_id", "week_offset", "created_at", "updated_at"})
}

func TestSlotRepositoryListFiltersAndCounts(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND class_id = $3 ORDER BY day_of_week ASC LIMIT 20 OFFSET 0")).
		WithArgs("school-1", "term-1", "class-1").
		WillReturnRows(slotRows().
			AddRow("slot-1", "school-1", "term-1", 1, "p1", "class-1", "math", "teacher-1", "room-1", nil, time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND class_id = $3")).
		WithArgs("school-1", "term-1", "class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	slots, total, err := repo.List(context.Background(), "school-1", models.SlotFilter{TermID: "term-1", ClassID: "class-1"})
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	// An unknown sort column falls back to day_of_week instead of reaching
	// the query string.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY day_of_week ASC")).
		WithArgs("school-1").
		WillReturnRows(slotRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), "school-1", models.SlotFilter{SortBy: "teacher_id; DROP TABLE timetable_slots"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	offset := 1
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE school_id = $1 AND id = $2")).
		WithArgs("school-1", "slot-1").
		WillReturnRows(slotRows().
			AddRow("slot-1", "school-1", "term-1", 3, "p2", "class-1", "math", "teacher-1", "room-1", offset, time.Now(), time.Now()))

	slot, err := repo.FindByID(context.Background(), "school-1", "slot-1")
	require.NoError(t, err)
	assert.Equal(t, 3, slot.DayOfWeek)
	require.NotNil(t, slot.WeekOffset)
	assert.Equal(t, 1, *slot.WeekOffset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE school_id = $1 AND id = $2")).
		WithArgs("school-1", "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "school-1", "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WithArgs(sqlmock.AnyArg(), "school-1", "term-1", 0, "p1", "class-1", "math", "teacher-1", "room-1", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.TimetableSlot{
		SchoolID:    "school-1",
		TermID:      "term-1",
		DayOfWeek:   0,
		PeriodID:    "p1",
		ClassID:     "class-1",
		SubjectID:   "math",
		TeacherID:   "teacher-1",
		ClassroomID: "room-1",
	}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListByTermJoinsPeriodOrder(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery("JOIN periods p ON p.id = s.period_id").
		WithArgs("school-1", "term-1").
		WillReturnRows(slotRows().
			AddRow("slot-1", "school-1", "term-1", 0, "p1", "class-1", "math", "teacher-1", "room-1", nil, time.Now(), time.Now()).
			AddRow("slot-2", "school-1", "term-1", 0, "p2", "class-1", "sci", "teacher-2", "room-1", nil, time.Now(), time.Now()))

	slots, err := repo.ListByTerm(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCountByTeacherWeek(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND teacher_id = $3")).
		WithArgs("school-1", "term-1", "teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByTeacherWeek(context.Background(), "school-1", "term-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryDeleteMissingIsNoOp(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE school_id = $1 AND id = $2")).
		WithArgs("school-1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "school-1", "ghost"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
