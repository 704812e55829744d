package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const classroomColumns = "id, school_id, name, room_type, capacity, active, created_at, updated_at"

// ClassroomRepository provides read access to rooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// FindByID loads a classroom by id within a school.
func (r *ClassroomRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE school_id = $1 AND id = $2", classroomColumns)
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, query, schoolID, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListActive returns active rooms ordered by id for stable selection.
func (r *ClassroomRepository) ListActive(ctx context.Context, schoolID string) ([]models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE school_id = $1 AND active = TRUE ORDER BY id ASC", classroomColumns)
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, schoolID); err != nil {
		return nil, fmt.Errorf("list active classrooms: %w", err)
	}
	return rooms, nil
}

// ListByType returns active rooms of a given type ordered by id.
func (r *ClassroomRepository) ListByType(ctx context.Context, schoolID string, roomType models.RoomType) ([]models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE school_id = $1 AND room_type = $2 AND active = TRUE ORDER BY id ASC", classroomColumns)
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, schoolID, roomType); err != nil {
		return nil, fmt.Errorf("list classrooms by type: %w", err)
	}
	return rooms, nil
}
