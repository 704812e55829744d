package models

import "time"

// TimetableSlot is one (day, period, class, teacher, room) assignment within
// a term. WeekOffset nil means the slot applies every week; 0/1 restricts it
// to even or odd weeks for biweekly patterns.
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	TermID      string    `db:"term_id" json:"term_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	PeriodID    string    `db:"period_id" json:"period_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	WeekOffset  *int      `db:"week_offset" json:"week_offset,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OverlapsWeek reports whether two week-offset values can ever land on the
// same calendar week. A nil offset repeats every week and overlaps anything.
func OverlapsWeek(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

// SlotFilter describes query params for listing slots.
type SlotFilter struct {
	TermID      string
	ClassID     string
	TeacherID   string
	ClassroomID string
	DayOfWeek   *int
	PeriodID    string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ConflictAxis names one of the three independent uniqueness dimensions.
type ConflictAxis string

const (
	AxisTeacherBusy ConflictAxis = "TEACHER_BUSY"
	AxisRoomBusy    ConflictAxis = "ROOM_BUSY"
	AxisClassBusy   ConflictAxis = "CLASS_BUSY"
)

// SlotConflict describes a committed slot that collides with a candidate on
// one axis.
type SlotConflict struct {
	Axis           ConflictAxis `json:"axis"`
	CollidingSlotID string      `json:"colliding_slot_id"`
	TermID         string       `json:"term_id"`
	DayOfWeek      int          `json:"day_of_week"`
	PeriodID       string       `json:"period_id"`
	ClassID        string       `json:"class_id"`
	TeacherID      string       `json:"teacher_id"`
	ClassroomID    string       `json:"classroom_id"`
}

// SlotConflictError is returned when a candidate slot violates one or more
// axes. All violated axes are reported, not just the first.
type SlotConflictError struct {
	Message   string         `json:"message"`
	Conflicts []SlotConflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Axes returns the distinct violated axes in report order.
func (e *SlotConflictError) Axes() []ConflictAxis {
	seen := make(map[ConflictAxis]bool, 3)
	var axes []ConflictAxis
	for _, c := range e.Conflicts {
		if !seen[c.Axis] {
			seen[c.Axis] = true
			axes = append(axes, c.Axis)
		}
	}
	return axes
}
