package models

import "time"

// AbsenceStatus tracks the lifecycle of a reported teacher absence.
type AbsenceStatus string

const (
	AbsenceReported  AbsenceStatus = "REPORTED"
	AbsenceApproved  AbsenceStatus = "APPROVED"
	AbsenceCancelled AbsenceStatus = "CANCELLED"
)

// AbsenceType classifies why a teacher is away.
type AbsenceType string

const (
	AbsenceSick     AbsenceType = "SICK"
	AbsencePersonal AbsenceType = "PERSONAL"
	AbsenceTraining AbsenceType = "TRAINING"
	AbsenceOther    AbsenceType = "OTHER"
)

// TeacherAbsence records a teacher's absence over a calendar span.
type TeacherAbsence struct {
	ID          string        `db:"id" json:"id"`
	SchoolID    string        `db:"school_id" json:"school_id"`
	TeacherID   string        `db:"teacher_id" json:"teacher_id"`
	StartDate   time.Time     `db:"start_date" json:"start_date"`
	EndDate     time.Time     `db:"end_date" json:"end_date"`
	AbsenceType AbsenceType   `db:"absence_type" json:"absence_type"`
	Reason      *string       `db:"reason" json:"reason,omitempty"`
	Status      AbsenceStatus `db:"status" json:"status"`
	IsAllDay    bool          `db:"is_all_day" json:"is_all_day"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// AbsenceFilter narrows absence listings.
type AbsenceFilter struct {
	TeacherID string
	Status    AbsenceStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
