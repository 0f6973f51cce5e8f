package game

import (
	"time"
)

// GuessResult records the Mantri's single guess for a round.
type GuessResult struct {
	GuesserID  string    `json:"guesserId"`
	AccusedID  string    `json:"accusedId"`
	Correct    bool      `json:"correct"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Round is one deal of the four roles plus its eventual resolution. A round
// is created unresolved and transitions exactly once to completed; after
// that it is only ever replaced, never mutated.
type Round struct {
	Number       int             `json:"roundNumber"`
	Roles        map[string]Role `json:"roles"`
	PointsBefore map[string]int  `json:"rolePointsBefore"`
	PointsAfter  map[string]int  `json:"rolePointsAfter,omitempty"`
	Guess        *GuessResult    `json:"guessResult,omitempty"`
	Completed    bool            `json:"completed"`
	StartedAt    time.Time       `json:"startedAt"`
}

// Engine owns the lifecycle of a single round: creation, guess resolution,
// ledger commit. The caller (the room) provides serialisation.
type Engine struct {
	assigner *Assigner
}

func NewEngine(assigner *Assigner) *Engine {
	return &Engine{assigner: assigner}
}

// StartRound deals a fresh round for the seated slate, numbering it one past
// prev (or 1 when prev is nil), and guarantees a ledger entry for every
// seated player. The prior round's resolved data lives on only through what
// was already folded into the ledger.
func (e *Engine) StartRound(prev *Round, seatedIDs []string, ledger *Ledger) (*Round, error) {
	roles, points, err := e.assigner.Assign(seatedIDs)
	if err != nil {
		return nil, err
	}

	number := 1
	if prev != nil {
		number = prev.Number + 1
	}

	for _, id := range seatedIDs {
		ledger.Ensure(id)
	}

	return &Round{
		Number:       number,
		Roles:        roles,
		PointsBefore: points,
		StartedAt:    time.Now(),
	}, nil
}

// ResolveGuess applies the Mantri's guess to the round and commits the
// resulting points into the ledger. Preconditions are checked in order, each
// a distinct failure, and no mutation happens before all of them pass.
func (e *Engine) ResolveGuess(r *Round, ledger *Ledger, guesserID, accusedID string) error {
	if r == nil {
		return ErrNoActiveRound
	}
	if r.Completed {
		return ErrRoundAlreadyResolved
	}
	if r.Roles[guesserID] != RoleMantri {
		return ErrNotAuthorizedGuesser
	}
	if _, seated := r.Roles[accusedID]; !seated {
		return ErrAccusedNotInRound
	}

	correct := r.Roles[accusedID] == RoleChor

	after := make(map[string]int, len(r.PointsBefore))
	for id, pts := range r.PointsBefore {
		after[id] = pts
	}
	if !correct {
		// The Chor takes the Mantri's entire current value.
		var chorID string
		for id, role := range r.Roles {
			if role == RoleChor {
				chorID = id
				break
			}
		}
		after[chorID] += after[guesserID]
		after[guesserID] = 0
	}

	for id, pts := range after {
		ledger.Credit(id, pts)
	}

	r.PointsAfter = after
	r.Completed = true
	r.Guess = &GuessResult{
		GuesserID:  guesserID,
		AccusedID:  accusedID,
		Correct:    correct,
		ResolvedAt: time.Now(),
	}
	return nil
}
