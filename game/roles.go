package game

import (
	"math/rand"
	"time"
)

// Role is one of the four labels dealt to a full table each round.
type Role string

const (
	RoleRaja   Role = "Raja"
	RoleMantri Role = "Mantri"
	RoleChor   Role = "Chor"
	RoleSipahi Role = "Sipahi"
)

// Capacity is the fixed number of seats per room. The game is defined for
// exactly four players, one per role.
const Capacity = 4

// DefaultBasePoints seeds each player's round points from their role.
var DefaultBasePoints = map[Role]int{
	RoleRaja:   1000,
	RoleMantri: 800,
	RoleSipahi: 500,
	RoleChor:   0,
}

// Assigner deals the four roles to a slate of seated players. The random
// source is injected so tests can seed it and assert an exact bijection.
type Assigner struct {
	rng        *rand.Rand
	basePoints map[Role]int
}

func NewAssigner() *Assigner {
	return NewAssignerWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewAssignerWithRand(rng *rand.Rand) *Assigner {
	return &Assigner{rng: rng, basePoints: DefaultBasePoints}
}

// SetBasePoints overrides the per-role point seeds. Chor stays zero; a zero
// override for any other role keeps its default.
func (a *Assigner) SetBasePoints(raja, mantri, sipahi int) {
	points := map[Role]int{
		RoleRaja:   DefaultBasePoints[RoleRaja],
		RoleMantri: DefaultBasePoints[RoleMantri],
		RoleSipahi: DefaultBasePoints[RoleSipahi],
		RoleChor:   0,
	}
	if raja > 0 {
		points[RoleRaja] = raja
	}
	if mantri > 0 {
		points[RoleMantri] = mantri
	}
	if sipahi > 0 {
		points[RoleSipahi] = sipahi
	}
	a.basePoints = points
}

// BasePoints returns the seed value for a role.
func (a *Assigner) BasePoints(role Role) int {
	return a.basePoints[role]
}

// Assign deals a uniformly random permutation of the four roles to exactly
// Capacity player ids, pairing positionally with the seating order, and
// derives each player's starting points from their role.
func (a *Assigner) Assign(playerIDs []string) (map[string]Role, map[string]int, error) {
	if len(playerIDs) != Capacity {
		return nil, nil, ErrInsufficientPlayers
	}

	deck := []Role{RoleRaja, RoleMantri, RoleChor, RoleSipahi}
	a.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	roles := make(map[string]Role, Capacity)
	points := make(map[string]int, Capacity)
	for i, id := range playerIDs {
		roles[id] = deck[i]
		points[id] = a.basePoints[deck[i]]
	}
	return roles, points, nil
}
