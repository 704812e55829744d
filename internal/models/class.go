package models

import "time"

// Class represents a named grade-section within a school.
type Class struct {
	ID                 string    `db:"id" json:"id"`
	SchoolID           string    `db:"school_id" json:"school_id"`
	Name               string    `db:"name" json:"name"`
	Grade              string    `db:"grade" json:"grade"`
	Capacity           int       `db:"capacity" json:"capacity"`
	HomeroomTeacherID  *string   `db:"homeroom_teacher_id" json:"homeroom_teacher_id,omitempty"`
	DefaultClassroomID *string   `db:"default_classroom_id" json:"default_classroom_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
