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

const substitutionColumns = "id, school_id, absence_id, slot_id, slot_date, original_teacher_id, substitute_teacher_id, status, decline_reason, confirmed_at, notes, created_at, updated_at"

// SubstitutionRepository provides persistence for substitution records.
// Records are only ever appended or status-transitioned; history is never
// rewritten.
type SubstitutionRepository struct {
	db *sqlx.DB
}

// NewSubstitutionRepository creates a new substitution repository.
func NewSubstitutionRepository(db *sqlx.DB) *SubstitutionRepository {
	return &SubstitutionRepository{db: db}
}

// Create stores one substitution record.
func (r *SubstitutionRepository) Create(ctx context.Context, record *models.SubstitutionRecord) error {
	return r.create(ctx, r.db, record)
}

// CreateBatch stores the records generated by an absence approval inside one
// transaction so the approval is all-or-nothing.
func (r *SubstitutionRepository) CreateBatch(ctx context.Context, records []models.SubstitutionRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create substitutions: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range records {
		if err = r.create(ctx, tx, &records[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create substitutions: %w", err)
	}
	return nil
}

func (r *SubstitutionRepository) create(ctx context.Context, exec sqlx.ExtContext, record *models.SubstitutionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO substitution_records (id, school_id, absence_id, slot_id, slot_date, original_teacher_id, substitute_teacher_id, status, decline_reason, confirmed_at, notes, created_at, updated_at)
		VALUES (:id, :school_id, :absence_id, :slot_id, :slot_date, :original_teacher_id, :substitute_teacher_id, :status, :decline_reason, :confirmed_at, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, record); err != nil {
		return fmt.Errorf("create substitution record: %w", err)
	}
	return nil
}

// FindByID loads a record by id within a school.
func (r *SubstitutionRepository) FindByID(ctx context.Context, schoolID, id string) (*models.SubstitutionRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM substitution_records WHERE school_id = $1 AND id = $2", substitutionColumns)
	var record models.SubstitutionRecord
	if err := r.db.GetContext(ctx, &record, query, schoolID, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns records with optional filtering and pagination.
func (r *SubstitutionRepository) List(ctx context.Context, schoolID string, filter models.SubstitutionFilter) ([]models.SubstitutionRecord, int, error) {
	base := "FROM substitution_records WHERE school_id = $1"
	args := []interface{}{schoolID}
	var conditions []string

	if filter.AbsenceID != "" {
		conditions = append(conditions, fmt.Sprintf("absence_id = $%d", len(args)+1))
		args = append(args, filter.AbsenceID)
	}
	if filter.SubstituteTeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("substitute_teacher_id = $%d", len(args)+1))
		args = append(args, filter.SubstituteTeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY slot_date ASC, created_at ASC LIMIT %d OFFSET %d", substitutionColumns, base, size, offset)
	var records []models.SubstitutionRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list substitution records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count substitution records: %w", err)
	}

	return records, total, nil
}

// UpdateStatus transitions a record, optionally recording the decline reason
// and confirmation timestamp.
func (r *SubstitutionRepository) UpdateStatus(ctx context.Context, schoolID, id string, status models.SubstitutionStatus, declineReason *string, confirmedAt *time.Time) error {
	const query = `UPDATE substitution_records SET status = $1, decline_reason = $2, confirmed_at = $3, updated_at = $4 WHERE school_id = $5 AND id = $6`
	result, err := r.db.ExecContext(ctx, query, status, declineReason, confirmedAt, time.Now().UTC(), schoolID, id)
	if err != nil {
		return fmt.Errorf("update substitution status: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("substitution record %s not found", id)
	}
	return nil
}

// CancelPendingByAbsence cancels every still-pending record of an absence.
// Confirmed and completed records are left standing.
func (r *SubstitutionRepository) CancelPendingByAbsence(ctx context.Context, schoolID, absenceID string) (int, error) {
	const query = `UPDATE substitution_records SET status = $1, updated_at = $2 WHERE school_id = $3 AND absence_id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, models.SubstitutionCancelled, time.Now().UTC(), schoolID, absenceID, models.SubstitutionPending)
	if err != nil {
		return 0, fmt.Errorf("cancel pending substitutions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel pending substitutions: %w", err)
	}
	return int(rows), nil
}

// CompleteElapsed moves confirmed records whose slot date has passed to
// COMPLETED and returns how many were swept.
func (r *SubstitutionRepository) CompleteElapsed(ctx context.Context, schoolID string, asOf time.Time) (int, error) {
	const query = `UPDATE substitution_records SET status = $1, updated_at = $2 WHERE school_id = $3 AND status = $4 AND slot_date < $5`
	result, err := r.db.ExecContext(ctx, query, models.SubstitutionCompleted, time.Now().UTC(), schoolID, models.SubstitutionConfirmed, asOf)
	if err != nil {
		return 0, fmt.Errorf("complete elapsed substitutions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete elapsed substitutions: %w", err)
	}
	return int(rows), nil
}

// CompleteElapsedAll sweeps confirmed past-dated records across every
// school. Backs the periodic background sweep.
func (r *SubstitutionRepository) CompleteElapsedAll(ctx context.Context, asOf time.Time) (int, error) {
	const query = `UPDATE substitution_records SET status = $1, updated_at = $2 WHERE status = $3 AND slot_date < $4`
	result, err := r.db.ExecContext(ctx, query, models.SubstitutionCompleted, time.Now().UTC(), models.SubstitutionConfirmed, asOf)
	if err != nil {
		return 0, fmt.Errorf("complete elapsed substitutions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete elapsed substitutions: %w", err)
	}
	return int(rows), nil
}

// Progress aggregates record counts per status for one absence.
func (r *SubstitutionRepository) Progress(ctx context.Context, schoolID, absenceID string) (*models.AbsenceProgress, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'CONFIRMED') AS confirmed,
		COUNT(*) FILTER (WHERE status = 'DECLINED') AS declined,
		COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed,
		COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled
		FROM substitution_records WHERE school_id = $1 AND absence_id = $2`
	row := r.db.QueryRowxContext(ctx, query, schoolID, absenceID)
	progress := models.AbsenceProgress{AbsenceID: absenceID}
	if err := row.Scan(&progress.Total, &progress.Pending, &progress.Confirmed, &progress.Declined, &progress.Completed, &progress.Cancelled); err != nil {
		return nil, fmt.Errorf("substitution progress: %w", err)
	}
	return &progress, nil
}
