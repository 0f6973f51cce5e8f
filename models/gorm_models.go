package models

import (
	"gorm.io/gorm"
)

// GormRoomSnapshot mirrors RoomSnapshot for the GORM backend. The nested
// player and score maps travel as serialized jsonb documents.
type GormRoomSnapshot struct {
	gorm.Model
	RoomID      string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Phase       string `gorm:"not null"`
	Seated      string `gorm:"type:jsonb"`
	Waitlist    string `gorm:"type:jsonb"`
	Scores      string `gorm:"type:jsonb"`
	RoundNumber int    `gorm:"default:0"`
}

// GormRoundRecord journals resolved rounds for the GORM backend.
type GormRoundRecord struct {
	gorm.Model
	RoomID       string `gorm:"index;not null"`
	RoundNumber  int    `gorm:"not null"`
	Roles        string `gorm:"type:jsonb;not null"`
	PointsBefore string `gorm:"type:jsonb;not null"`
	PointsAfter  string `gorm:"type:jsonb;not null"`
	GuesserID    string `gorm:"not null"`
	AccusedID    string `gorm:"not null"`
	Correct      bool   `gorm:"not null"`
}
