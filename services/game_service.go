package services

import (
	"errors"
	"time"

	"github.com/chorgame/server/game"
	"github.com/chorgame/server/logger"
	"github.com/chorgame/server/models"
	"github.com/chorgame/server/persistence"
	"github.com/chorgame/server/room"
)

// ErrMissingField is returned when a caller omits a required input.
var ErrMissingField = errors.New("missing required field")

// GameService exposes the boundary operations consumed by the transports.
// It validates input presence, delegates to the registry, and journals
// room snapshots and resolved rounds to the store. Persistence is
// best-effort: the in-memory registry is authoritative and a store failure
// never fails the request.
type GameService struct {
	rooms *room.Manager
	store persistence.Store
}

func NewGameService(rooms *room.Manager, store persistence.Store) *GameService {
	return &GameService{rooms: rooms, store: store}
}

// Rooms exposes the registry for occupancy sampling.
func (s *GameService) Rooms() *room.Manager {
	return s.rooms
}

// Store exposes the journal for admin queries.
func (s *GameService) Store() persistence.Store {
	return s.store
}

type RoomMeta struct {
	RoomID    string    `json:"roomId"`
	Name      string    `json:"name"`
	Phase     string    `json:"phase"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateRoomResult struct {
	RoomID   string          `json:"roomId"`
	PlayerID string          `json:"playerId"`
	Player   room.PlayerView `json:"player"`
	Room     RoomMeta        `json:"room"`
}

type JoinRoomResult struct {
	RoomID           string            `json:"roomId"`
	PlayerID         string            `json:"playerId"`
	Player           room.PlayerView   `json:"player"`
	Assigned         bool              `json:"assigned"`
	Seated           bool              `json:"seated"`
	CurrentPlayers   int               `json:"currentPlayers"`
	WaitlistPosition int               `json:"waitlistPosition,omitempty"`
}

type ListPlayersResult struct {
	Players       []room.PlayerView `json:"players"`
	WaitlistCount int               `json:"waitlistCount"`
	Phase         string            `json:"phase"`
}

type RoundResult struct {
	RoundNumber int  `json:"roundNumber"`
	Completed   bool `json:"completed"`
}

type RoleResult struct {
	Name        string    `json:"name"`
	Role        game.Role `json:"role,omitempty"`
	RoundNumber int       `json:"roundNumber"`
}

type GuessOutcomeResult struct {
	Correct      bool           `json:"correct"`
	PointsBefore map[string]int `json:"rolePointsBefore"`
	PointsAfter  map[string]int `json:"rolePointsAfter"`
	Cumulative   map[string]int `json:"cumulative"`
}

type LeaderboardResult struct {
	Leaderboard []room.LeaderboardRow `json:"leaderboard"`
}

type AdvanceResult struct {
	Message string            `json:"message,omitempty"`
	Players []room.PlayerView `json:"players,omitempty"`
	Round   *RoundResult      `json:"newRound,omitempty"`
}

func (s *GameService) CreateRoom(playerName, roomName string) (*CreateRoomResult, error) {
	if playerName == "" {
		return nil, ErrMissingField
	}

	r, host := s.rooms.CreateRoom(playerName, roomName)
	s.persistSnapshot(r.ID)

	return &CreateRoomResult{
		RoomID:   r.ID,
		PlayerID: host.ID,
		Player:   room.PlayerView{ID: host.ID, Name: host.Name, JoinedAt: host.JoinedAt},
		Room: RoomMeta{
			RoomID:    r.ID,
			Name:      r.Name,
			Phase:     string(r.Phase()),
			CreatedAt: r.CreatedAt,
		},
	}, nil
}

func (s *GameService) JoinRoom(roomID, playerName string) (*JoinRoomResult, error) {
	if roomID == "" || playerName == "" {
		return nil, ErrMissingField
	}

	out, err := s.rooms.JoinRoom(roomID, playerName)
	if err != nil {
		return nil, err
	}
	s.persistSnapshot(roomID)

	return &JoinRoomResult{
		RoomID:           roomID,
		PlayerID:         out.Player.ID,
		Player:           room.PlayerView{ID: out.Player.ID, Name: out.Player.Name, JoinedAt: out.Player.JoinedAt},
		Assigned:         out.Assigned,
		Seated:           out.Seated,
		CurrentPlayers:   out.SeatedCount,
		WaitlistPosition: out.WaitlistPosition,
	}, nil
}

func (s *GameService) ListPlayers(roomID string) (*ListPlayersResult, error) {
	if roomID == "" {
		return nil, ErrMissingField
	}

	view, err := s.rooms.ListPlayers(roomID)
	if err != nil {
		return nil, err
	}
	return &ListPlayersResult{
		Players:       view.Players,
		WaitlistCount: view.WaitlistCount,
		Phase:         view.Phase,
	}, nil
}

func (s *GameService) ForceAssign(roomID string) (*RoundResult, error) {
	if roomID == "" {
		return nil, ErrMissingField
	}

	round, err := s.rooms.ForceAssign(roomID)
	if err != nil {
		return nil, err
	}
	s.persistSnapshot(roomID)

	return &RoundResult{RoundNumber: round.Number, Completed: round.Completed}, nil
}

func (s *GameService) Role(roomID, playerID string) (*RoleResult, error) {
	if roomID == "" || playerID == "" {
		return nil, ErrMissingField
	}

	info, err := s.rooms.RoleFor(roomID, playerID)
	if err != nil {
		return nil, err
	}
	return &RoleResult{Name: info.Name, Role: info.Role, RoundNumber: info.RoundNumber}, nil
}

func (s *GameService) SubmitGuess(roomID, guesserID, accusedID string) (*GuessOutcomeResult, error) {
	if roomID == "" || guesserID == "" || accusedID == "" {
		return nil, ErrMissingField
	}

	out, err := s.rooms.ResolveGuess(roomID, guesserID, accusedID)
	if err != nil {
		return nil, err
	}

	s.persistSnapshot(roomID)
	s.persistRound(roomID, out.Round)

	return &GuessOutcomeResult{
		Correct:      out.Correct,
		PointsBefore: out.PointsBefore,
		PointsAfter:  out.PointsAfter,
		Cumulative:   out.Cumulative,
	}, nil
}

func (s *GameService) Result(roomID string) (*room.ResultView, error) {
	if roomID == "" {
		return nil, ErrMissingField
	}
	return s.rooms.Result(roomID)
}

func (s *GameService) Leaderboard(roomID string) (*LeaderboardResult, error) {
	if roomID == "" {
		return nil, ErrMissingField
	}

	rows, err := s.rooms.Leaderboard(roomID)
	if err != nil {
		return nil, err
	}
	return &LeaderboardResult{Leaderboard: rows}, nil
}

func (s *GameService) AdvanceRound(roomID string) (*AdvanceResult, error) {
	if roomID == "" {
		return nil, ErrMissingField
	}

	out, err := s.rooms.AdvanceRound(roomID)
	if err != nil {
		return nil, err
	}
	s.persistSnapshot(roomID)

	if out.Waiting {
		return &AdvanceResult{
			Message: "waiting for players",
			Players: out.Players,
		}, nil
	}
	return &AdvanceResult{
		Round: &RoundResult{RoundNumber: out.Round.Number, Completed: out.Round.Completed},
	}, nil
}

func (s *GameService) persistSnapshot(roomID string) {
	snap, err := s.rooms.Snapshot(roomID)
	if err != nil {
		return
	}

	stored := &models.RoomSnapshot{
		RoomID:      snap.RoomID,
		Name:        snap.Name,
		Phase:       snap.Phase,
		Seated:      toPlayerInfos(snap.Seated),
		Waitlist:    toPlayerInfos(snap.Waitlist),
		Scores:      snap.Scores,
		RoundNumber: snap.RoundNumber,
		CreatedAt:   snap.CreatedAt,
	}
	if err := s.store.SaveRoomSnapshot(stored); err != nil && logger.Log != nil {
		logger.Log.Warnf("Failed to persist snapshot for room %s: %v", roomID, err)
	}
}

func (s *GameService) persistRound(roomID string, round *game.Round) {
	roles := make(map[string]string, len(round.Roles))
	for id, role := range round.Roles {
		roles[id] = string(role)
	}

	rec := &models.RoundRecord{
		RoomID:       roomID,
		RoundNumber:  round.Number,
		Roles:        roles,
		PointsBefore: round.PointsBefore,
		PointsAfter:  round.PointsAfter,
		GuesserID:    round.Guess.GuesserID,
		AccusedID:    round.Guess.AccusedID,
		Correct:      round.Guess.Correct,
		StartedAt:    round.StartedAt,
		ResolvedAt:   round.Guess.ResolvedAt,
	}
	if err := s.store.SaveRoundRecord(rec); err != nil && logger.Log != nil {
		logger.Log.Warnf("Failed to journal round %d for room %s: %v", round.Number, roomID, err)
	}
}

func toPlayerInfos(views []room.PlayerView) []models.PlayerInfo {
	infos := make([]models.PlayerInfo, len(views))
	for i, v := range views {
		infos[i] = models.PlayerInfo{ID: v.ID, Name: v.Name, JoinedAt: v.JoinedAt}
	}
	return infos
}
