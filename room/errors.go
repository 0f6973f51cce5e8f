package room

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotFound  = errors.New("player not found in room")
	ErrRoundInProgress = errors.New("current round must be resolved before advancing")
	ErrNoRoundAssigned = errors.New("room has no round assigned")
)
