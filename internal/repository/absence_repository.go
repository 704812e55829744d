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

const absenceColumns = "id, school_id, teacher_id, start_date, end_date, absence_type, reason, status, is_all_day, created_at, updated_at"

// AbsenceRepository provides persistence for teacher absences.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository creates a new absence repository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// Create stores a new absence record.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.TeacherAbsence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = now
	}
	absence.UpdatedAt = now

	const query = `INSERT INTO teacher_absences (id, school_id, teacher_id, start_date, end_date, absence_type, reason, status, is_all_day, created_at, updated_at)
		VALUES (:id, :school_id, :teacher_id, :start_date, :end_date, :absence_type, :reason, :status, :is_all_day, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// FindByID loads an absence by id within a school.
func (r *AbsenceRepository) FindByID(ctx context.Context, schoolID, id string) (*models.TeacherAbsence, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_absences WHERE school_id = $1 AND id = $2", absenceColumns)
	var absence models.TeacherAbsence
	if err := r.db.GetContext(ctx, &absence, query, schoolID, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// List returns absences with optional filtering and pagination.
func (r *AbsenceRepository) List(ctx context.Context, schoolID string, filter models.AbsenceFilter) ([]models.TeacherAbsence, int, error) {
	base := "FROM teacher_absences WHERE school_id = $1"
	args := []interface{}{schoolID}
	var conditions []string

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date DESC LIMIT %d OFFSET %d", absenceColumns, base, size, offset)
	var absences []models.TeacherAbsence
	if err := r.db.SelectContext(ctx, &absences, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list absences: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count absences: %w", err)
	}

	return absences, total, nil
}

// UpdateStatus transitions an absence's status.
func (r *AbsenceRepository) UpdateStatus(ctx context.Context, schoolID, id string, status models.AbsenceStatus) error {
	const query = `UPDATE teacher_absences SET status = $1, updated_at = $2 WHERE school_id = $3 AND id = $4`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), schoolID, id)
	if err != nil {
		return fmt.Errorf("update absence status: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("absence %s not found", id)
	}
	return nil
}
