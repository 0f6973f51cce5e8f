package room

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chorgame/server/game"
	"github.com/chorgame/server/state"
)

// Manager owns every room for the process lifetime. It is constructed once
// at startup and handed to the service layer; nothing reaches it as a
// global, so tests can run isolated instances side by side.
type Manager struct {
	mutex  sync.RWMutex
	rooms  map[string]*Room
	engine *game.Engine
}

func NewManager(engine *game.Engine) *Manager {
	return &Manager{
		rooms:  make(map[string]*Room),
		engine: engine,
	}
}

func (m *Manager) get(roomID string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[roomID]
	return r, exists
}

// CreateRoom opens a room with the host as its sole seated player.
func (m *Manager) CreateRoom(hostName, roomName string) (*Room, *Player) {
	if roomName == "" {
		roomName = hostName + "'s room"
	}

	r := newRoom(uuid.NewString(), roomName)
	host := &Player{ID: uuid.NewString(), Name: hostName, JoinedAt: r.CreatedAt}
	r.seats = append(r.seats, host)
	r.ledger.Ensure(host.ID)

	m.mutex.Lock()
	m.rooms[r.ID] = r
	m.mutex.Unlock()

	return r, host
}

// JoinRoom seats the player if a seat is free, otherwise appends them to the
// waitlist. Filling the last seat deals the first round immediately; seating
// and the auto-start share one critical section.
func (m *Manager) JoinRoom(roomID, playerName string) (*JoinOutcome, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := &Player{ID: uuid.NewString(), Name: playerName, JoinedAt: time.Now()}

	if len(r.seats) < game.Capacity {
		r.seats = append(r.seats, p)
		r.ledger.Ensure(p.ID)

		out := &JoinOutcome{Player: p, Seated: true, SeatedCount: len(r.seats)}
		if len(r.seats) == game.Capacity {
			if err := m.startRoundLocked(r); err != nil {
				return nil, err
			}
			out.Assigned = true
		}
		return out, nil
	}

	r.waitlist = append(r.waitlist, p)
	return &JoinOutcome{
		Player:           p,
		Seated:           false,
		WaitlistPosition: len(r.waitlist),
		SeatedCount:      len(r.seats),
	}, nil
}

// startRoundLocked deals a new round and moves the phase to guessing.
// Callers hold r.mu.
func (m *Manager) startRoundLocked(r *Room) error {
	round, err := m.engine.StartRound(r.round, r.seatedIDs(), r.ledger)
	if err != nil {
		return err
	}
	r.round = round
	return r.phase.To(state.PhaseGuessing)
}

// ForceAssign is the manual override: it re-deals over any existing round,
// resolved or not, as long as the table is full.
func (m *Manager) ForceAssign(roomID string) (*game.Round, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.seats) != game.Capacity {
		return nil, game.ErrInsufficientPlayers
	}
	if err := m.startRoundLocked(r); err != nil {
		return nil, err
	}
	return r.round, nil
}

// ResolveGuess applies the Mantri's guess to the room's current round.
func (m *Manager) ResolveGuess(roomID, guesserID, accusedID string) (*GuessOutcome, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := m.engine.ResolveGuess(r.round, r.ledger, guesserID, accusedID); err != nil {
		return nil, err
	}
	if err := r.phase.To(state.PhaseSettled); err != nil {
		return nil, err
	}

	return &GuessOutcome{
		Correct:      r.round.Guess.Correct,
		PointsBefore: r.round.PointsBefore,
		PointsAfter:  r.round.PointsAfter,
		Cumulative:   r.ledger.Snapshot(),
		Round:        r.round,
	}, nil
}

// AdvanceRound moves the room past a resolved round: with a full table it
// deals the next round; below capacity it clears the round, promotes from
// the waitlist in FIFO order, and reports a waiting state. Promotion never
// auto-starts a round even when it fills every seat.
func (m *Manager) AdvanceRound(roomID string) (*AdvanceOutcome, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.round != nil && !r.round.Completed {
		return nil, ErrRoundInProgress
	}

	if len(r.seats) < game.Capacity {
		r.round = nil
		if err := r.phase.To(state.PhaseWaiting); err != nil {
			return nil, err
		}
		r.promoteLocked()
		return &AdvanceOutcome{Waiting: true, Players: r.playerViews()}, nil
	}

	if err := m.startRoundLocked(r); err != nil {
		return nil, err
	}
	return &AdvanceOutcome{Round: r.round}, nil
}

// RoleFor returns playerID's role in the current round, or an empty role
// when no round exists. The player must be seated or waitlisted.
func (m *Manager) RoleFor(roomID, playerID string) (*RoleInfo, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.holdsPlayer(playerID) {
		return nil, ErrPlayerNotFound
	}

	info := &RoleInfo{Name: r.nameOf(playerID)}
	if r.round != nil {
		info.Role = r.round.Roles[playerID]
		info.RoundNumber = r.round.Number
	}
	return info, nil
}

// Result reports the current round: per-seated-player role, before/after
// points (after only once resolved) and cumulative totals.
func (m *Manager) Result(roomID string) (*ResultView, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.round == nil {
		return nil, ErrNoRoundAssigned
	}

	view := &ResultView{
		RoundNumber: r.round.Number,
		Completed:   r.round.Completed,
		Guess:       r.round.Guess,
		Players:     make([]ResultRow, 0, len(r.seats)),
	}
	for _, p := range r.seats {
		row := ResultRow{
			PlayerID:     p.ID,
			Name:         p.Name,
			Role:         r.round.Roles[p.ID],
			PointsBefore: r.round.PointsBefore[p.ID],
			Total:        r.ledger.EntryFor(p.ID),
		}
		if r.round.Completed {
			after := r.round.PointsAfter[p.ID]
			row.PointsAfter = &after
		}
		view.Players = append(view.Players, row)
	}
	return view, nil
}

// Leaderboard lists every ledger entry with its display name, points
// descending, ties broken by insertion order.
func (m *Manager) Leaderboard(roomID string) ([]LeaderboardRow, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]LeaderboardRow, 0, len(r.ledger.IDs()))
	for _, id := range r.ledger.IDs() {
		rows = append(rows, LeaderboardRow{
			PlayerID: id,
			Name:     r.nameOf(id),
			Points:   r.ledger.EntryFor(id),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})
	return rows, nil
}

// ListPlayers returns the seated players, the waitlist length and the
// room's current phase.
func (m *Manager) ListPlayers(roomID string) (*PlayersView, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return &PlayersView{
		Players:       r.playerViews(),
		WaitlistCount: len(r.waitlist),
		Phase:         string(r.phase.Current()),
	}, nil
}

// Snapshot captures the room's persistable state.
func (m *Manager) Snapshot(roomID string) (*Snapshot, error) {
	r, exists := m.get(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &Snapshot{
		RoomID:    r.ID,
		Name:      r.Name,
		Phase:     string(r.phase.Current()),
		Seated:    r.playerViews(),
		Waitlist:  make([]PlayerView, 0, len(r.waitlist)),
		Scores:    r.ledger.Snapshot(),
		CreatedAt: r.CreatedAt,
	}
	for _, p := range r.waitlist {
		snap.Waitlist = append(snap.Waitlist, PlayerView{ID: p.ID, Name: p.Name, JoinedAt: p.JoinedAt})
	}
	if r.round != nil {
		snap.RoundNumber = r.round.Number
	}
	return snap, nil
}

// Counts reports registry-wide occupancy for the metrics sampler.
func (m *Manager) Counts() (rooms, seated, waitlisted int) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms = len(m.rooms)
	for _, r := range m.rooms {
		r.mu.RLock()
		seated += len(r.seats)
		waitlisted += len(r.waitlist)
		r.mu.RUnlock()
	}
	return
}
