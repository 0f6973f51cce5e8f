package network

// Message ids, one per boundary operation.
const (
	MsgTypeHeartbeat    = 1
	MsgTypeCreateRoom   = 101
	MsgTypeJoinRoom     = 102
	MsgTypeListPlayers  = 103
	MsgTypeForceAssign  = 104
	MsgTypeGetRole      = 105
	MsgTypeSubmitGuess  = 106
	MsgTypeGetResult    = 107
	MsgTypeLeaderboard  = 108
	MsgTypeAdvanceRound = 109
)

// Wire status codes. Zero is success; non-zero values enumerate the
// caller-correctable failure conditions so clients can branch without
// parsing error text.
const (
	StatusOK                   = 0
	StatusMissingField         = 1
	StatusRoomNotFound         = 2
	StatusPlayerNotFound       = 3
	StatusInsufficientPlayers  = 4
	StatusNoActiveRound        = 5
	StatusRoundAlreadyResolved = 6
	StatusRoundInProgress      = 7
	StatusNotAuthorizedGuesser = 8
	StatusAccusedNotInRound    = 9
	StatusNoRoundAssigned      = 10
	StatusInternal             = 100
)
