package models

import (
	"time"
)

// PlayerInfo is a player's identity as persisted with a room.
type PlayerInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoomSnapshot is a room's durable shape, keyed by room id. The in-memory
// registry stays authoritative; snapshots exist so a durable store can be
// substituted without changing the registry's shapes.
type RoomSnapshot struct {
	RoomID      string         `json:"room_id"`
	Name        string         `json:"name"`
	Phase       string         `json:"phase"`
	Seated      []PlayerInfo   `json:"seated"`
	Waitlist    []PlayerInfo   `json:"waitlist"`
	Scores      map[string]int `json:"scores"`
	RoundNumber int            `json:"round_number"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RoundRecord journals one resolved round. Records are append-only; the
// room itself keeps only its current round.
type RoundRecord struct {
	RoomID       string            `json:"room_id"`
	RoundNumber  int               `json:"round_number"`
	Roles        map[string]string `json:"roles"`
	PointsBefore map[string]int    `json:"points_before"`
	PointsAfter  map[string]int    `json:"points_after"`
	GuesserID    string            `json:"guesser_id"`
	AccusedID    string            `json:"accused_id"`
	Correct      bool              `json:"correct"`
	StartedAt    time.Time         `json:"started_at"`
	ResolvedAt   time.Time         `json:"resolved_at"`
}
