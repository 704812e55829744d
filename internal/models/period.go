package models

import "time"

// Period is an ordered named time span within a school day. Ordering is
// significant: lunch placement counts teaching (non-break) periods by order.
type Period struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	Name         string    `db:"name" json:"name"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	IsBreak      bool      `db:"is_break" json:"is_break"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
