package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const periodColumns = "id, school_id, name, start_time, end_time, display_order, is_break, created_at, updated_at"

// PeriodRepository provides read access to the school's period ladder.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// ListBySchool returns all periods ordered by display order.
func (r *PeriodRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE school_id = $1 ORDER BY display_order ASC", periodColumns)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, schoolID); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByID loads a period by id within a school.
func (r *PeriodRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE school_id = $1 AND id = $2", periodColumns)
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, schoolID, id); err != nil {
		return nil, err
	}
	return &period, nil
}
