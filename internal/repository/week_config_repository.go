package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const weekConfigColumns = "id, school_id, term_id, working_days, lunch_after_period, class_overrides, created_at, updated_at"

// WeekConfigRepository stores per-school working-day and lunch-placement
// configuration. A row with NULL term_id is the all-terms fallback.
type WeekConfigRepository struct {
	db *sqlx.DB
}

// NewWeekConfigRepository creates a new week config repository.
func NewWeekConfigRepository(db *sqlx.DB) *WeekConfigRepository {
	return &WeekConfigRepository{db: db}
}

// FindByTerm loads the term-specific config.
func (r *WeekConfigRepository) FindByTerm(ctx context.Context, schoolID, termID string) (*models.WeekConfig, error) {
	query := fmt.Sprintf("SELECT %s FROM week_configs WHERE school_id = $1 AND term_id = $2", weekConfigColumns)
	var cfg models.WeekConfig
	if err := r.db.GetContext(ctx, &cfg, query, schoolID, termID); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDefault loads the school's all-terms fallback config.
func (r *WeekConfigRepository) FindDefault(ctx context.Context, schoolID string) (*models.WeekConfig, error) {
	query := fmt.Sprintf("SELECT %s FROM week_configs WHERE school_id = $1 AND term_id IS NULL", weekConfigColumns)
	var cfg models.WeekConfig
	if err := r.db.GetContext(ctx, &cfg, query, schoolID); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert inserts or replaces the config for a (school, term) pair. The
// partial unique indexes on (school_id, term_id) and on school_id where
// term_id is null keep one row per scope.
func (r *WeekConfigRepository) Upsert(ctx context.Context, cfg *models.WeekConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	var query string
	if cfg.TermID == nil {
		query = `INSERT INTO week_configs (id, school_id, term_id, working_days, lunch_after_period, class_overrides, created_at, updated_at)
			VALUES (:id, :school_id, :term_id, :working_days, :lunch_after_period, :class_overrides, :created_at, :updated_at)
			ON CONFLICT (school_id) WHERE term_id IS NULL
			DO UPDATE SET working_days = EXCLUDED.working_days, lunch_after_period = EXCLUDED.lunch_after_period, class_overrides = EXCLUDED.class_overrides, updated_at = EXCLUDED.updated_at`
	} else {
		query = `INSERT INTO week_configs (id, school_id, term_id, working_days, lunch_after_period, class_overrides, created_at, updated_at)
			VALUES (:id, :school_id, :term_id, :working_days, :lunch_after_period, :class_overrides, :created_at, :updated_at)
			ON CONFLICT (school_id, term_id)
			DO UPDATE SET working_days = EXCLUDED.working_days, lunch_after_period = EXCLUDED.lunch_after_period, class_overrides = EXCLUDED.class_overrides, updated_at = EXCLUDED.updated_at`
	}
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("upsert week config: %w", err)
	}
	return nil
}
