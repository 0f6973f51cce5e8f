package room

import (
	"sync"
	"time"

	"github.com/chorgame/server/game"
	"github.com/chorgame/server/state"
)

// Player is a seated or waitlisted participant. Created on join, never
// mutated; there is no removal operation.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is one isolated game instance: its seats, waitlist, current round,
// score ledger and phase. Every mutating operation runs under mu, so the
// resolution sequence (guards, transfer, ledger commit, promotion) never
// interleaves and two joins cannot both pass the capacity check.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu       sync.RWMutex
	seats    []*Player // ordered, len <= game.Capacity
	waitlist []*Player // FIFO, unbounded
	round    *game.Round
	ledger   *game.Ledger
	phase    *state.Machine
}

func newRoom(id, name string) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
		ledger:    game.NewLedger(),
		phase:     state.NewMachine(),
	}
}

// Phase reports the room's lifecycle phase.
func (r *Room) Phase() state.Phase {
	return r.phase.Current()
}

// seatedIDs returns the seat order; callers hold r.mu.
func (r *Room) seatedIDs() []string {
	ids := make([]string, len(r.seats))
	for i, p := range r.seats {
		ids[i] = p.ID
	}
	return ids
}

// nameOf resolves a display name from seats then waitlist; "Unknown" covers
// ledger ids with no surviving player record. Callers hold r.mu.
func (r *Room) nameOf(playerID string) string {
	for _, p := range r.seats {
		if p.ID == playerID {
			return p.Name
		}
	}
	for _, p := range r.waitlist {
		if p.ID == playerID {
			return p.Name
		}
	}
	return "Unknown"
}

// holdsPlayer reports whether playerID is seated or waitlisted. Callers
// hold r.mu.
func (r *Room) holdsPlayer(playerID string) bool {
	for _, p := range r.seats {
		if p.ID == playerID {
			return true
		}
	}
	for _, p := range r.waitlist {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// promoteLocked moves waitlisted players into free seats in FIFO order,
// ensuring a ledger entry for each. Callers hold r.mu.
func (r *Room) promoteLocked() {
	for len(r.seats) < game.Capacity && len(r.waitlist) > 0 {
		next := r.waitlist[0]
		r.waitlist = r.waitlist[1:]
		r.seats = append(r.seats, next)
		r.ledger.Ensure(next.ID)
	}
}

func (r *Room) playerViews() []PlayerView {
	views := make([]PlayerView, len(r.seats))
	for i, p := range r.seats {
		views[i] = PlayerView{ID: p.ID, Name: p.Name, JoinedAt: p.JoinedAt}
	}
	return views
}

// PlayerView is the reporting shape for a seated player.
type PlayerView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// PlayersView is the occupancy report for a room.
type PlayersView struct {
	Players       []PlayerView
	WaitlistCount int
	Phase         string
}

// JoinOutcome reports where a joining player landed.
type JoinOutcome struct {
	Player           *Player
	Seated           bool
	Assigned         bool // a round auto-started because this join filled the table
	WaitlistPosition int  // 1-based, set only when not seated
	SeatedCount      int
}

// GuessOutcome carries the resolved round's point movement and the updated
// cumulative ledger.
type GuessOutcome struct {
	Correct      bool
	PointsBefore map[string]int
	PointsAfter  map[string]int
	Cumulative   map[string]int
	Round        *game.Round
}

// AdvanceOutcome is either a fresh round or a waiting-for-players report.
type AdvanceOutcome struct {
	Waiting bool
	Players []PlayerView
	Round   *game.Round
}

// RoleInfo is a single player's secret role lookup.
type RoleInfo struct {
	Name        string
	Role        game.Role // empty when no round exists
	RoundNumber int
}

// ResultRow is one seated player's line in a round result.
type ResultRow struct {
	PlayerID     string    `json:"playerId"`
	Name         string    `json:"name"`
	Role         game.Role `json:"role"`
	PointsBefore int       `json:"rolePointsBefore"`
	PointsAfter  *int      `json:"rolePointsAfter,omitempty"`
	Total        int       `json:"totalScore"`
}

// ResultView is the full current-round report.
type ResultView struct {
	RoundNumber int               `json:"roundNumber"`
	Completed   bool              `json:"completed"`
	Guess       *game.GuessResult `json:"guessResult,omitempty"`
	Players     []ResultRow       `json:"players"`
}

// LeaderboardRow pairs a ledger entry with a display name.
type LeaderboardRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Points   int    `json:"score"`
}

// Snapshot is the room's persistable shape, keyed by room id.
type Snapshot struct {
	RoomID      string
	Name        string
	Phase       string
	Seated      []PlayerView
	Waitlist    []PlayerView
	Scores      map[string]int
	RoundNumber int
	CreatedAt   time.Time
}
