package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const teacherColumns = "id, school_id, email, full_name, department, active, created_at, updated_at"

// TeacherRepository provides read access to the teacher roster and their
// subject qualifications.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID loads a teacher by id within a school.
func (r *TeacherRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE school_id = $1 AND id = $2", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, schoolID, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListActive returns the school's active teachers ordered by id for stable
// selection during generation and suggestion ranking.
func (r *TeacherRepository) ListActive(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE school_id = $1 AND active = TRUE ORDER BY id ASC", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, schoolID); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	return teachers, nil
}

// ListQualified returns active teachers qualified for a subject, ordered by
// id for determinism.
func (r *TeacherRepository) ListQualified(ctx context.Context, schoolID, subjectID string) ([]models.Teacher, error) {
	const query = `SELECT t.id, t.school_id, t.email, t.full_name, t.department, t.active, t.created_at, t.updated_at
		FROM teachers t
		JOIN teacher_subjects ts ON ts.teacher_id = t.id
		WHERE t.school_id = $1 AND ts.subject_id = $2 AND t.active = TRUE
		ORDER BY t.id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, schoolID, subjectID); err != nil {
		return nil, fmt.Errorf("list qualified teachers: %w", err)
	}
	return teachers, nil
}

// IsQualified reports whether a teacher is qualified for a subject.
func (r *TeacherRepository) IsQualified(ctx context.Context, teacherID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, teacherID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check qualification: %w", err)
	}
	return true, nil
}
