package server

// Request payloads for the websocket boundary. Responses reuse the
// result types from the services package.

type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
	RoomName   string `json:"roomName,omitempty"`
}

type JoinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// RoomRequest covers the operations keyed by room alone: list players,
// force assignment, result, leaderboard, advance round.
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type RoleRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type GuessRequest struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	AccusedID string `json:"accusedId"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
