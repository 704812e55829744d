package models

import "time"

// SubstitutionStatus tracks one substitute assignment for one dated slot
// occurrence.
type SubstitutionStatus string

const (
	SubstitutionPending   SubstitutionStatus = "PENDING"
	SubstitutionConfirmed SubstitutionStatus = "CONFIRMED"
	SubstitutionDeclined  SubstitutionStatus = "DECLINED"
	SubstitutionCompleted SubstitutionStatus = "COMPLETED"
	SubstitutionCancelled SubstitutionStatus = "CANCELLED"
)

// SubstitutionRecord is one concrete occurrence of a substitute covering an
// absent teacher's slot on one date. Declined records are retained for
// audit; re-assignment creates a new record rather than mutating history.
type SubstitutionRecord struct {
	ID                  string             `db:"id" json:"id"`
	SchoolID            string             `db:"school_id" json:"school_id"`
	AbsenceID           string             `db:"absence_id" json:"absence_id"`
	SlotID              string             `db:"slot_id" json:"slot_id"`
	SlotDate            time.Time          `db:"slot_date" json:"slot_date"`
	OriginalTeacherID   string             `db:"original_teacher_id" json:"original_teacher_id"`
	SubstituteTeacherID string             `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	Status              SubstitutionStatus `db:"status" json:"status"`
	DeclineReason       *string            `db:"decline_reason" json:"decline_reason,omitempty"`
	ConfirmedAt         *time.Time         `db:"confirmed_at" json:"confirmed_at,omitempty"`
	Notes               *string            `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at" json:"updated_at"`
}

// SubstitutionFilter narrows substitution listings.
type SubstitutionFilter struct {
	AbsenceID           string
	SubstituteTeacherID string
	Status              SubstitutionStatus
	Page                int
	PageSize            int
}

// AbsenceProgress summarises substitution coverage for one absence, e.g.
// "3 of 5 confirmed".
type AbsenceProgress struct {
	AbsenceID string `json:"absence_id"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Confirmed int    `json:"confirmed"`
	Declined  int    `json:"declined"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
}

// Resolved reports whether every non-cancelled record has been confirmed or
// completed.
func (p AbsenceProgress) Resolved() bool {
	open := p.Total - p.Cancelled
	return open > 0 && p.Confirmed+p.Completed == open
}
