package models

import "time"

// RoomAffinityAny marks subjects that can be taught in any regular room.
const RoomAffinityAny RoomType = "ANY"

// Subject represents a teachable unit with a weekly-hour quota and an
// optional room-type affinity.
type Subject struct {
	ID           string   `db:"id" json:"id"`
	SchoolID     string   `db:"school_id" json:"school_id"`
	Code         string   `db:"code" json:"code"`
	Name         string   `db:"name" json:"name"`
	WeeklyHours  int      `db:"weekly_hours" json:"weekly_hours"`
	RoomAffinity RoomType `db:"room_affinity" json:"room_affinity"`
	// AllowAnyRoom permits a fallback to a regular room when no room of the
	// affinity type is free.
	AllowAnyRoom bool      `db:"allow_any_room" json:"allow_any_room"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RequiresRoomType reports whether the subject demands a specific room type.
func (s Subject) RequiresRoomType() bool {
	return s.RoomAffinity != "" && s.RoomAffinity != RoomAffinityAny
}
