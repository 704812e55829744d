package models

import "time"

// RoomType classifies a classroom for subject affinity matching.
type RoomType string

const (
	RoomTypeRegular  RoomType = "REGULAR"
	RoomTypeLab      RoomType = "LAB"
	RoomTypeComputer RoomType = "COMPUTER"
	RoomTypeGym      RoomType = "GYM"
	RoomTypeArt      RoomType = "ART"
	RoomTypeMusic    RoomType = "MUSIC"
)

// Classroom is the unit of conflict checking on the room axis.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	RoomType  RoomType  `db:"room_type" json:"room_type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
