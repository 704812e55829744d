package dto

import "github.com/databayt/hogwarts-timetable/internal/models"

// TimetableView selects the perspective of the weekly grid.
type TimetableView string

const (
	ViewByClass   TimetableView = "class"
	ViewByTeacher TimetableView = "teacher"
)

// TimetableCell is one day x period intersection in the weekly grid.
type TimetableCell struct {
	SlotID      string `json:"slot_id,omitempty"`
	SubjectID   string `json:"subject_id,omitempty"`
	TeacherID   string `json:"teacher_id,omitempty"`
	ClassID     string `json:"class_id,omitempty"`
	ClassroomID string `json:"classroom_id,omitempty"`
	WeekOffset  *int   `json:"week_offset,omitempty"`
}

// TimetableRow is one grid row: a period (or the synthetic lunch row) with
// one cell per working day.
type TimetableRow struct {
	PeriodID   string          `json:"period_id,omitempty"`
	PeriodName string          `json:"period_name"`
	StartTime  string          `json:"start_time,omitempty"`
	EndTime    string          `json:"end_time,omitempty"`
	IsBreak    bool            `json:"is_break"`
	IsLunch    bool            `json:"is_lunch"`
	Cells      []TimetableCell `json:"cells"`
}

// TimetableGrid is the weekly day x period view for one class or teacher.
// Days carries the ordered working-day indices (0 = Sunday); Rows follow the
// period display order with the lunch row inserted after the configured
// number of teaching periods.
type TimetableGrid struct {
	TermID     string         `json:"term_id"`
	View       TimetableView  `json:"view"`
	TargetID   string         `json:"target_id"`
	WeekOffset *int           `json:"week_offset,omitempty"`
	Days       []int          `json:"days"`
	Rows       []TimetableRow `json:"rows"`
}

// SlotCandidate is a strongly-typed candidate assignment validated at the
// boundary before it reaches the conflict detector.
type SlotCandidate struct {
	TermID      string `json:"term_id" validate:"required"`
	DayOfWeek   int    `json:"day_of_week" validate:"min=0,max=6"`
	PeriodID    string `json:"period_id" validate:"required"`
	ClassID     string `json:"class_id" validate:"required"`
	SubjectID   string `json:"subject_id" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required"`
	ClassroomID string `json:"classroom_id" validate:"required"`
	WeekOffset  *int   `json:"week_offset,omitempty" validate:"omitempty,min=0,max=1"`
}

// Slot converts the candidate into the persisted shape.
func (c SlotCandidate) Slot(schoolID string) models.TimetableSlot {
	return models.TimetableSlot{
		SchoolID:    schoolID,
		TermID:      c.TermID,
		DayOfWeek:   c.DayOfWeek,
		PeriodID:    c.PeriodID,
		ClassID:     c.ClassID,
		SubjectID:   c.SubjectID,
		TeacherID:   c.TeacherID,
		ClassroomID: c.ClassroomID,
		WeekOffset:  c.WeekOffset,
	}
}

// Alternative is one conflict-free replacement proposed by the suggestion
// engine. Only the dimensions that conflicted are populated.
type Alternative struct {
	TeacherID   *string `json:"teacher_id,omitempty"`
	ClassroomID *string `json:"classroom_id,omitempty"`
	// TeacherLoad is the proposed teacher's current weekly assignment count,
	// exposed so the UI can explain the ranking.
	TeacherLoad int `json:"teacher_load,omitempty"`
	// ExactRoomType is true when the proposed room matches the subject's
	// affinity exactly rather than via the any-room fallback.
	ExactRoomType bool `json:"exact_room_type,omitempty"`
}
