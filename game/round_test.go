package game

import (
	"math/rand"
	"testing"
)

func seededEngine(seed int64) *Engine {
	return NewEngine(NewAssignerWithRand(rand.New(rand.NewSource(seed))))
}

func startTestRound(t *testing.T, e *Engine, ledger *Ledger) *Round {
	t.Helper()
	r, err := e.StartRound(nil, []string{"p1", "p2", "p3", "p4"}, ledger)
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	return r
}

func idWithRole(r *Round, role Role) string {
	for id, got := range r.Roles {
		if got == role {
			return id
		}
	}
	return ""
}

func TestAssigner_Bijection(t *testing.T) {
	assigner := NewAssignerWithRand(rand.New(rand.NewSource(42)))
	ids := []string{"p1", "p2", "p3", "p4"}

	roles, points, err := assigner.Assign(ids)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if len(roles) != Capacity {
		t.Fatalf("Expected %d role entries, got %d", Capacity, len(roles))
	}

	seen := make(map[Role]bool)
	for _, id := range ids {
		role, ok := roles[id]
		if !ok {
			t.Errorf("Player %s has no role", id)
			continue
		}
		if seen[role] {
			t.Errorf("Role %s assigned twice", role)
		}
		seen[role] = true
		if points[id] != DefaultBasePoints[role] {
			t.Errorf("Expected %d points for role %s, got %d", DefaultBasePoints[role], role, points[id])
		}
	}
	if len(seen) != 4 {
		t.Errorf("Expected all 4 roles present, got %d", len(seen))
	}
}

func TestAssigner_Deterministic(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4"}

	rolesA, _, err := NewAssignerWithRand(rand.New(rand.NewSource(7))).Assign(ids)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	rolesB, _, err := NewAssignerWithRand(rand.New(rand.NewSource(7))).Assign(ids)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	for _, id := range ids {
		if rolesA[id] != rolesB[id] {
			t.Errorf("Same seed gave different role for %s: %s vs %s", id, rolesA[id], rolesB[id])
		}
	}
}

func TestAssigner_InsufficientPlayers(t *testing.T) {
	assigner := NewAssigner()

	_, _, err := assigner.Assign([]string{"p1", "p2", "p3"})
	if err != ErrInsufficientPlayers {
		t.Errorf("Expected ErrInsufficientPlayers, got %v", err)
	}

	_, _, err = assigner.Assign([]string{"p1", "p2", "p3", "p4", "p5"})
	if err != ErrInsufficientPlayers {
		t.Errorf("Expected ErrInsufficientPlayers for 5 players, got %v", err)
	}
}

func TestAssigner_SetBasePoints(t *testing.T) {
	assigner := NewAssignerWithRand(rand.New(rand.NewSource(1)))
	assigner.SetBasePoints(2000, 1600, 0)

	if assigner.BasePoints(RoleRaja) != 2000 {
		t.Errorf("Expected Raja points 2000, got %d", assigner.BasePoints(RoleRaja))
	}
	if assigner.BasePoints(RoleMantri) != 1600 {
		t.Errorf("Expected Mantri points 1600, got %d", assigner.BasePoints(RoleMantri))
	}
	// Zero override keeps the default.
	if assigner.BasePoints(RoleSipahi) != 500 {
		t.Errorf("Expected Sipahi points 500, got %d", assigner.BasePoints(RoleSipahi))
	}
	if assigner.BasePoints(RoleChor) != 0 {
		t.Errorf("Expected Chor points 0, got %d", assigner.BasePoints(RoleChor))
	}
}

func TestEngine_StartRound_Numbering(t *testing.T) {
	e := seededEngine(3)
	ledger := NewLedger()

	first := startTestRound(t, e, ledger)
	if first.Number != 1 {
		t.Errorf("Expected first round number 1, got %d", first.Number)
	}
	if first.Completed {
		t.Error("New round should not be completed")
	}

	second, err := e.StartRound(first, []string{"p1", "p2", "p3", "p4"}, ledger)
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if second.Number != 2 {
		t.Errorf("Expected second round number 2, got %d", second.Number)
	}
}

func TestEngine_StartRound_EnsuresLedgerEntries(t *testing.T) {
	e := seededEngine(3)
	ledger := NewLedger()

	startTestRound(t, e, ledger)

	ids := ledger.IDs()
	if len(ids) != 4 {
		t.Fatalf("Expected 4 ledger entries, got %d", len(ids))
	}
	for _, id := range ids {
		if ledger.EntryFor(id) != 0 {
			t.Errorf("Expected fresh entry for %s to be 0, got %d", id, ledger.EntryFor(id))
		}
	}
}

func TestEngine_ResolveGuess_Correct(t *testing.T) {
	e := seededEngine(11)
	ledger := NewLedger()
	r := startTestRound(t, e, ledger)

	mantri := idWithRole(r, RoleMantri)
	chor := idWithRole(r, RoleChor)

	if err := e.ResolveGuess(r, ledger, mantri, chor); err != nil {
		t.Fatalf("ResolveGuess failed: %v", err)
	}

	if !r.Completed {
		t.Error("Round should be completed after resolution")
	}
	if r.Guess == nil || !r.Guess.Correct {
		t.Fatal("Expected a correct guess result")
	}

	// Correct guess: every role keeps its base points.
	for id, before := range r.PointsBefore {
		if r.PointsAfter[id] != before {
			t.Errorf("Expected points for %s unchanged at %d, got %d", id, before, r.PointsAfter[id])
		}
		if ledger.EntryFor(id) != before {
			t.Errorf("Expected ledger for %s to be %d, got %d", id, before, ledger.EntryFor(id))
		}
	}
}

func TestEngine_ResolveGuess_Incorrect(t *testing.T) {
	e := seededEngine(11)
	ledger := NewLedger()
	r := startTestRound(t, e, ledger)

	mantri := idWithRole(r, RoleMantri)
	chor := idWithRole(r, RoleChor)
	raja := idWithRole(r, RoleRaja)
	sipahi := idWithRole(r, RoleSipahi)

	if err := e.ResolveGuess(r, ledger, mantri, raja); err != nil {
		t.Fatalf("ResolveGuess failed: %v", err)
	}

	if r.Guess.Correct {
		t.Fatal("Guess against the Raja should be incorrect")
	}
	if r.PointsAfter[mantri] != 0 {
		t.Errorf("Expected Mantri to be zeroed, got %d", r.PointsAfter[mantri])
	}
	if r.PointsAfter[chor] != 800 {
		t.Errorf("Expected Chor to take the Mantri's 800, got %d", r.PointsAfter[chor])
	}
	if r.PointsAfter[raja] != 1000 {
		t.Errorf("Expected Raja unchanged at 1000, got %d", r.PointsAfter[raja])
	}
	if r.PointsAfter[sipahi] != 500 {
		t.Errorf("Expected Sipahi unchanged at 500, got %d", r.PointsAfter[sipahi])
	}

	if ledger.EntryFor(chor) != 800 {
		t.Errorf("Expected ledger credit of 800 for Chor, got %d", ledger.EntryFor(chor))
	}
	if ledger.EntryFor(mantri) != 0 {
		t.Errorf("Expected ledger credit of 0 for Mantri, got %d", ledger.EntryFor(mantri))
	}
}

func TestEngine_ResolveGuess_AtMostOnce(t *testing.T) {
	e := seededEngine(5)
	ledger := NewLedger()
	r := startTestRound(t, e, ledger)

	mantri := idWithRole(r, RoleMantri)
	chor := idWithRole(r, RoleChor)

	if err := e.ResolveGuess(r, ledger, mantri, chor); err != nil {
		t.Fatalf("First ResolveGuess failed: %v", err)
	}
	before := ledger.Snapshot()

	err := e.ResolveGuess(r, ledger, mantri, chor)
	if err != ErrRoundAlreadyResolved {
		t.Fatalf("Expected ErrRoundAlreadyResolved, got %v", err)
	}

	for id, pts := range ledger.Snapshot() {
		if before[id] != pts {
			t.Errorf("Ledger for %s changed after rejected second guess: %d vs %d", id, before[id], pts)
		}
	}
}

func TestEngine_ResolveGuess_Guards(t *testing.T) {
	e := seededEngine(9)
	ledger := NewLedger()

	if err := e.ResolveGuess(nil, ledger, "p1", "p2"); err != ErrNoActiveRound {
		t.Errorf("Expected ErrNoActiveRound, got %v", err)
	}

	r := startTestRound(t, e, ledger)
	raja := idWithRole(r, RoleRaja)
	mantri := idWithRole(r, RoleMantri)
	chor := idWithRole(r, RoleChor)

	if err := e.ResolveGuess(r, ledger, raja, chor); err != ErrNotAuthorizedGuesser {
		t.Errorf("Expected ErrNotAuthorizedGuesser, got %v", err)
	}
	if err := e.ResolveGuess(r, ledger, "stranger", chor); err != ErrNotAuthorizedGuesser {
		t.Errorf("Expected ErrNotAuthorizedGuesser for unknown guesser, got %v", err)
	}
	if err := e.ResolveGuess(r, ledger, mantri, "stranger"); err != ErrAccusedNotInRound {
		t.Errorf("Expected ErrAccusedNotInRound, got %v", err)
	}

	// None of the rejected calls may have mutated anything.
	if r.Completed {
		t.Error("Round should still be unresolved after rejected guesses")
	}
	for _, id := range ledger.IDs() {
		if ledger.EntryFor(id) != 0 {
			t.Errorf("Expected ledger for %s untouched, got %d", id, ledger.EntryFor(id))
		}
	}
}

func TestLedger_Basics(t *testing.T) {
	l := NewLedger()

	l.Ensure("a")
	l.Ensure("a")
	if len(l.IDs()) != 1 {
		t.Errorf("Ensure should be idempotent, got %d entries", len(l.IDs()))
	}

	l.Credit("a", 500)
	l.Credit("a", 300)
	if l.EntryFor("a") != 800 {
		t.Errorf("Expected 800, got %d", l.EntryFor("a"))
	}

	if l.EntryFor("unknown") != 0 {
		t.Errorf("Expected 0 for unknown id, got %d", l.EntryFor("unknown"))
	}

	l.Credit("b", 0)
	ids := l.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Expected insertion order [a b], got %v", ids)
	}

	snap := l.Snapshot()
	snap["a"] = -1
	if l.EntryFor("a") != 800 {
		t.Error("Snapshot should be a copy, ledger was mutated")
	}
}
