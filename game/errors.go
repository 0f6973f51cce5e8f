package game

import "errors"

// Round-engine guard violations. Every one of these is caused by caller
// state, never by infrastructure, so none is retryable.
var (
	ErrInsufficientPlayers  = errors.New("room does not have enough seated players")
	ErrNoActiveRound        = errors.New("no active round")
	ErrRoundAlreadyResolved = errors.New("round already resolved")
	ErrNotAuthorizedGuesser = errors.New("only the Mantri may guess")
	ErrAccusedNotInRound    = errors.New("accused player is not part of this round")
)
