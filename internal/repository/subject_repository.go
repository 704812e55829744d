package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const subjectColumns = "id, school_id, code, name, weekly_hours, room_affinity, allow_any_room, created_at, updated_at"

// SubjectRepository provides read access to subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID loads a subject by id within a school.
func (r *SubjectRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE school_id = $1 AND id = $2", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, schoolID, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListBySchool returns all subjects ordered by code.
func (r *SubjectRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE school_id = $1 ORDER BY code ASC", subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, schoolID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
