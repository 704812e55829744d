package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const classColumns = "id, school_id, name, grade, capacity, homeroom_teacher_id, default_classroom_id, created_at, updated_at"

// ClassRepository provides read access to class sections.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class by id within a school.
func (r *ClassRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE school_id = $1 AND id = $2", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, schoolID, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListBySchool returns all classes ordered by grade then name.
func (r *ClassRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE school_id = $1 ORDER BY grade ASC, name ASC", classColumns)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, schoolID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}
