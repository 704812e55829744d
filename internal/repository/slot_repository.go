package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const slotColumns = "id, school_id, term_id, day_of_week, period_id, class_id, subject_id, teacher_id, classroom_id, week_offset, created_at, updated_at"

// SlotRepository provides persistence for timetable slots. Every query is
// scoped by school_id; the exclusion constraints over
// (school_id, term_id, day_of_week, period_id, parity range) x teacher/class/
// classroom are the final arbiter under concurrent writes.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// List returns slots with optional filtering and pagination.
func (r *SlotRepository) List(ctx context.Context, schoolID string, filter models.SlotFilter) ([]models.TimetableSlot, int, error) {
	base := "FROM timetable_slots WHERE school_id = $1"
	args := []interface{}{schoolID}
	var conditions []string

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassroomID != "" {
		conditions = append(conditions, fmt.Sprintf("classroom_id = $%d", len(args)+1))
		args = append(args, filter.ClassroomID)
	}
	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, *filter.DayOfWeek)
	}
	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week": true,
		"class_id":    true,
		"teacher_id":  true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", slotColumns, base, sortBy, order, size, offset)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count slots: %w", err)
	}

	return slots, total, nil
}

// FindByID loads a slot by id within a school.
func (r *SlotRepository) FindByID(ctx context.Context, schoolID, id string) (*models.TimetableSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE school_id = $1 AND id = $2", slotColumns)
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, schoolID, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByKey returns all slots sharing a (term, day, period) key. Week-offset
// overlap is resolved by the caller.
func (r *SlotRepository) ListByKey(ctx context.Context, schoolID, termID string, dayOfWeek int, periodID string) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND day_of_week = $3 AND period_id = $4", slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, termID, dayOfWeek, periodID); err != nil {
		return nil, fmt.Errorf("list slots by key: %w", err)
	}
	return slots, nil
}

// ListByTerm returns every slot in a term ordered by day, period display
// order, then class id. The stable ordering keeps bulk conflict reports
// deterministic.
func (r *SlotRepository) ListByTerm(ctx context.Context, schoolID, termID string) ([]models.TimetableSlot, error) {
	const query = `SELECT s.id, s.school_id, s.term_id, s.day_of_week, s.period_id, s.class_id, s.subject_id, s.teacher_id, s.classroom_id, s.week_offset, s.created_at, s.updated_at
		FROM timetable_slots s
		JOIN periods p ON p.id = s.period_id
		WHERE s.school_id = $1 AND s.term_id = $2
		ORDER BY s.day_of_week ASC, p.display_order ASC, s.class_id ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, termID); err != nil {
		return nil, fmt.Errorf("list slots by term: %w", err)
	}
	return slots, nil
}

// ListByClass returns a class's slots for a term.
func (r *SlotRepository) ListByClass(ctx context.Context, schoolID, termID, classID string) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND class_id = $3 ORDER BY day_of_week ASC", slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, termID, classID); err != nil {
		return nil, fmt.Errorf("list slots by class: %w", err)
	}
	return slots, nil
}

// ListByTeacher returns a teacher's slots for a term.
func (r *SlotRepository) ListByTeacher(ctx context.Context, schoolID, termID, teacherID string) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND teacher_id = $3 ORDER BY day_of_week ASC", slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, termID, teacherID); err != nil {
		return nil, fmt.Errorf("list slots by teacher: %w", err)
	}
	return slots, nil
}

// CountByTeacherWeek counts a teacher's weekly assignments within a term,
// used for load-balanced suggestion ranking.
func (r *SlotRepository) CountByTeacherWeek(ctx context.Context, schoolID, termID, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM timetable_slots WHERE school_id = $1 AND term_id = $2 AND teacher_id = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, schoolID, termID, teacherID); err != nil {
		return 0, fmt.Errorf("count teacher slots: %w", err)
	}
	return count, nil
}

// Create stores a new slot record. A constraint violation surfaces the
// concurrent write that the pre-check missed.
func (r *SlotRepository) Create(ctx context.Context, slot *models.TimetableSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO timetable_slots (id, school_id, term_id, day_of_week, period_id, class_id, subject_id, teacher_id, classroom_id, week_offset, created_at, updated_at)
		VALUES (:id, :school_id, :term_id, :day_of_week, :period_id, :class_id, :subject_id, :teacher_id, :classroom_id, :week_offset, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// Update modifies a slot record.
func (r *SlotRepository) Update(ctx context.Context, slot *models.TimetableSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetable_slots SET term_id = :term_id, day_of_week = :day_of_week, period_id = :period_id, class_id = :class_id, subject_id = :subject_id, teacher_id = :teacher_id, classroom_id = :classroom_id, week_offset = :week_offset, updated_at = :updated_at
		WHERE id = :id AND school_id = :school_id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

// Delete removes a slot by id. Deleting a missing slot is a no-op.
func (r *SlotRepository) Delete(ctx context.Context, schoolID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_slots WHERE school_id = $1 AND id = $2`, schoolID, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// DeleteByTerm clears a term's slots, used on term rollover.
func (r *SlotRepository) DeleteByTerm(ctx context.Context, schoolID, termID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_slots WHERE school_id = $1 AND term_id = $2`, schoolID, termID); err != nil {
		return fmt.Errorf("delete slots by term: %w", err)
	}
	return nil
}
