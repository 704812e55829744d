package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/jmoiron/sqlx/types"
)

// WeekConfig stores the working-day set and lunch placement for a school,
// either term-specific or as an all-terms fallback (nil TermID).
type WeekConfig struct {
	ID               string         `db:"id" json:"id"`
	SchoolID         string         `db:"school_id" json:"school_id"`
	TermID           *string        `db:"term_id" json:"term_id,omitempty"`
	WorkingDays      pq.Int64Array  `db:"working_days" json:"working_days"`
	LunchAfterPeriod int            `db:"lunch_after_period" json:"lunch_after_period"`
	ClassOverrides   types.JSONText `db:"class_overrides" json:"class_overrides,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ResolvedWeekConfig is the effective configuration after fallback
// resolution. WorkingDays uses 0-6 day indices (0 = Sunday), ordered.
type ResolvedWeekConfig struct {
	WorkingDays      []int          `json:"working_days"`
	LunchAfterPeriod int            `json:"lunch_after_period"`
	ClassOverrides   map[string]int `json:"class_overrides,omitempty"`
}

// LunchPositionFor returns the lunch ordinal for a class, honouring any
// per-class override.
func (c ResolvedWeekConfig) LunchPositionFor(classID string) int {
	if pos, ok := c.ClassOverrides[classID]; ok {
		return pos
	}
	return c.LunchAfterPeriod
}
