package dto

import "time"

// ReportAbsenceRequest records a new teacher absence.
type ReportAbsenceRequest struct {
	TeacherID   string    `json:"teacher_id" validate:"required"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	AbsenceType string    `json:"absence_type" validate:"required,oneof=SICK PERSONAL TRAINING OTHER"`
	Reason      *string   `json:"reason,omitempty"`
	IsAllDay    bool      `json:"is_all_day"`
}

// SubstituteAssignment names the substitute for one of the absent teacher's
// slots during approval. Occurrences without an explicit assignment fall
// back to the suggestion engine.
type SubstituteAssignment struct {
	SlotID              string `json:"slot_id" validate:"required"`
	SubstituteTeacherID string `json:"substitute_teacher_id" validate:"required"`
}

// ApproveAbsenceRequest approves an absence and seeds substitution records
// for every affected occurrence inside the named term.
type ApproveAbsenceRequest struct {
	TermID      string                 `json:"term_id" validate:"required"`
	Assignments []SubstituteAssignment `json:"assignments" validate:"dive"`
}

// RespondRequest carries a substitute's confirm/decline decision.
type RespondRequest struct {
	Decision      string  `json:"decision" validate:"required,oneof=confirm decline"`
	DeclineReason *string `json:"decline_reason,omitempty"`
}

// ReassignRequest points a declined occurrence at a new substitute.
type ReassignRequest struct {
	SubstituteTeacherID string  `json:"substitute_teacher_id" validate:"required"`
	Notes               *string `json:"notes,omitempty"`
}
