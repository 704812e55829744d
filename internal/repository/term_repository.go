package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/databayt/hogwarts-timetable/internal/models"
)

const termColumns = "id, school_id, name, start_date, end_date, active, created_at, updated_at"

// TermRepository provides read access to academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository creates a new term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindByID loads a term by id within a school.
func (r *TermRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM terms WHERE school_id = $1 AND id = $2", termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, schoolID, id); err != nil {
		return nil, err
	}
	return &term, nil
}
