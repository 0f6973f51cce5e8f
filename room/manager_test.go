package room

import (
	"math/rand"
	"testing"

	"github.com/chorgame/server/game"
	"github.com/chorgame/server/state"
)

func newTestManager(seed int64) *Manager {
	assigner := game.NewAssignerWithRand(rand.New(rand.NewSource(seed)))
	return NewManager(game.NewEngine(assigner))
}

// fillRoom creates a room and seats three more players, returning the room
// and every seated player in order.
func fillRoom(t *testing.T, m *Manager) (*Room, []*Player) {
	t.Helper()
	r, host := m.CreateRoom("host", "")
	players := []*Player{host}
	for _, name := range []string{"p2", "p3", "p4"} {
		out, err := m.JoinRoom(r.ID, name)
		if err != nil {
			t.Fatalf("JoinRoom(%s) failed: %v", name, err)
		}
		players = append(players, out.Player)
	}
	return r, players
}

func mantriOf(r *Room) string {
	for id, role := range r.round.Roles {
		if role == game.RoleMantri {
			return id
		}
	}
	return ""
}

func chorOf(r *Room) string {
	for id, role := range r.round.Roles {
		if role == game.RoleChor {
			return id
		}
	}
	return ""
}

func TestManager_CreateRoom(t *testing.T) {
	m := newTestManager(1)
	r, host := m.CreateRoom("alice", "friday night")

	if r.Name != "friday night" {
		t.Errorf("Expected room name %q, got %q", "friday night", r.Name)
	}
	if host.ID == "" {
		t.Error("Host should have an id")
	}
	if len(r.seats) != 1 || r.seats[0] != host {
		t.Error("Host should be the sole seated player")
	}
	if r.ledger.EntryFor(host.ID) != 0 {
		t.Errorf("Host should have a zero ledger entry, got %d", r.ledger.EntryFor(host.ID))
	}
	if r.Phase() != state.PhaseWaiting {
		t.Errorf("Expected phase waiting, got %s", r.Phase())
	}

	r2, _ := m.CreateRoom("bob", "")
	if r2.Name != "bob's room" {
		t.Errorf("Expected default room name %q, got %q", "bob's room", r2.Name)
	}
}

func TestManager_JoinRoom_NotFound(t *testing.T) {
	m := newTestManager(1)
	if _, err := m.JoinRoom("missing", "alice"); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestManager_AutoAssignOnFill(t *testing.T) {
	m := newTestManager(2)
	r, host := m.CreateRoom("host", "")

	for i, name := range []string{"p2", "p3"} {
		out, err := m.JoinRoom(r.ID, name)
		if err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
		if !out.Seated || out.Assigned {
			t.Errorf("Join %d: expected seated without assignment", i+2)
		}
		if r.round != nil {
			t.Fatal("No round should exist before the table fills")
		}
	}

	out, err := m.JoinRoom(r.ID, "p4")
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if !out.Seated || !out.Assigned {
		t.Fatal("Filling the last seat should auto-assign a round")
	}
	if r.round == nil || r.round.Number != 1 {
		t.Fatal("Expected round 1 to exist immediately after fill")
	}
	if r.Phase() != state.PhaseGuessing {
		t.Errorf("Expected phase guessing, got %s", r.Phase())
	}

	// Full bijection over the four seated ids, host included.
	if len(r.round.Roles) != game.Capacity {
		t.Fatalf("Expected %d roles, got %d", game.Capacity, len(r.round.Roles))
	}
	if _, ok := r.round.Roles[host.ID]; !ok {
		t.Error("Host should hold a role")
	}
}

func TestManager_WaitlistFIFO(t *testing.T) {
	m := newTestManager(3)
	r, _ := fillRoom(t, m)

	for i, name := range []string{"A", "B", "C"} {
		out, err := m.JoinRoom(r.ID, name)
		if err != nil {
			t.Fatalf("JoinRoom(%s) failed: %v", name, err)
		}
		if out.Seated {
			t.Errorf("%s should have been waitlisted", name)
		}
		if out.WaitlistPosition != i+1 {
			t.Errorf("Expected waitlist position %d for %s, got %d", i+1, name, out.WaitlistPosition)
		}
	}

	if len(r.seats) != game.Capacity {
		t.Errorf("Capacity invariant violated: %d seats", len(r.seats))
	}

	// Resolve the round, then simulate three vacated seats and advance.
	if _, err := m.ResolveGuess(r.ID, mantriOf(r), chorOf(r)); err != nil {
		t.Fatalf("ResolveGuess failed: %v", err)
	}
	r.mu.Lock()
	r.seats = r.seats[:1]
	r.mu.Unlock()

	out, err := m.AdvanceRound(r.ID)
	if err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}
	if !out.Waiting {
		t.Fatal("Advance below capacity should report a waiting state")
	}
	if out.Round != nil {
		t.Error("Promotion must not auto-start a round")
	}

	names := make([]string, 0, len(out.Players))
	for _, p := range out.Players[1:] { // skip the remaining original player
		names = append(names, p.Name)
	}
	want := []string{"A", "B", "C"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Expected promotion order %v, got %v", want, names)
		}
	}
	if len(r.waitlist) != 0 {
		t.Errorf("Expected empty waitlist, got %d", len(r.waitlist))
	}
	if r.Phase() != state.PhaseWaiting {
		t.Errorf("Expected phase waiting, got %s", r.Phase())
	}
}

func TestManager_AdvanceRound_Guards(t *testing.T) {
	m := newTestManager(4)
	r, _ := fillRoom(t, m)

	if _, err := m.AdvanceRound("missing"); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
	if _, err := m.AdvanceRound(r.ID); err != ErrRoundInProgress {
		t.Errorf("Expected ErrRoundInProgress, got %v", err)
	}

	if _, err := m.ResolveGuess(r.ID, mantriOf(r), chorOf(r)); err != nil {
		t.Fatalf("ResolveGuess failed: %v", err)
	}

	out, err := m.AdvanceRound(r.ID)
	if err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}
	if out.Round == nil || out.Round.Number != 2 {
		t.Fatal("Advance with a full table should deal round 2")
	}
}

func TestManager_ForceAssign(t *testing.T) {
	m := newTestManager(5)
	r, _ := m.CreateRoom("host", "")

	if _, err := m.ForceAssign(r.ID); err != game.ErrInsufficientPlayers {
		t.Errorf("Expected ErrInsufficientPlayers, got %v", err)
	}

	for _, name := range []string{"p2", "p3", "p4"} {
		if _, err := m.JoinRoom(r.ID, name); err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	}
	first := r.round.Number

	// Override path: replaces the unresolved round.
	round, err := m.ForceAssign(r.ID)
	if err != nil {
		t.Fatalf("ForceAssign failed: %v", err)
	}
	if round.Number != first+1 {
		t.Errorf("Expected round number %d, got %d", first+1, round.Number)
	}
	if round.Completed {
		t.Error("Re-dealt round should be unresolved")
	}
}

func TestManager_ResolveGuess_UnauthorizedNoMutation(t *testing.T) {
	m := newTestManager(6)
	r, _ := fillRoom(t, m)

	var notMantri string
	for id, role := range r.round.Roles {
		if role != game.RoleMantri {
			notMantri = id
			break
		}
	}

	before := r.ledger.Snapshot()
	_, err := m.ResolveGuess(r.ID, notMantri, chorOf(r))
	if err != game.ErrNotAuthorizedGuesser {
		t.Fatalf("Expected ErrNotAuthorizedGuesser, got %v", err)
	}
	if r.round.Completed {
		t.Error("Round should remain unresolved")
	}
	for id, pts := range r.ledger.Snapshot() {
		if before[id] != pts {
			t.Errorf("Ledger for %s changed: %d vs %d", id, before[id], pts)
		}
	}
}

func TestManager_ResolveGuess_SecondCallRejected(t *testing.T) {
	m := newTestManager(7)
	r, _ := fillRoom(t, m)

	out, err := m.ResolveGuess(r.ID, mantriOf(r), chorOf(r))
	if err != nil {
		t.Fatalf("ResolveGuess failed: %v", err)
	}
	if !out.Correct {
		t.Fatal("Naming the Chor should be correct")
	}

	if _, err := m.ResolveGuess(r.ID, out.Round.Guess.GuesserID, out.Round.Guess.AccusedID); err != game.ErrRoundAlreadyResolved {
		t.Errorf("Expected ErrRoundAlreadyResolved, got %v", err)
	}
}

func TestManager_RoleFor(t *testing.T) {
	m := newTestManager(8)
	r, host := m.CreateRoom("host", "")

	info, err := m.RoleFor(r.ID, host.ID)
	if err != nil {
		t.Fatalf("RoleFor failed: %v", err)
	}
	if info.Role != "" || info.RoundNumber != 0 {
		t.Error("Expected empty role before any round")
	}
	if info.Name != "host" {
		t.Errorf("Expected name host, got %s", info.Name)
	}

	if _, err := m.RoleFor(r.ID, "stranger"); err != ErrPlayerNotFound {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}

	for _, name := range []string{"p2", "p3", "p4"} {
		if _, err := m.JoinRoom(r.ID, name); err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	}

	info, err = m.RoleFor(r.ID, host.ID)
	if err != nil {
		t.Fatalf("RoleFor failed: %v", err)
	}
	if info.Role == "" || info.RoundNumber != 1 {
		t.Errorf("Expected a role in round 1, got %q in round %d", info.Role, info.RoundNumber)
	}

	// Waitlisted players exist but have no role.
	out, err := m.JoinRoom(r.ID, "waiter")
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	info, err = m.RoleFor(r.ID, out.Player.ID)
	if err != nil {
		t.Fatalf("RoleFor for waitlisted player failed: %v", err)
	}
	if info.Role != "" {
		t.Errorf("Waitlisted player should have no role, got %s", info.Role)
	}
}

func TestManager_Result(t *testing.T) {
	m := newTestManager(9)
	r, _ := m.CreateRoom("host", "")

	if _, err := m.Result(r.ID); err != ErrNoRoundAssigned {
		t.Errorf("Expected ErrNoRoundAssigned, got %v", err)
	}

	for _, name := range []string{"p2", "p3", "p4"} {
		if _, err := m.JoinRoom(r.ID, name); err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	}

	view, err := m.Result(r.ID)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if view.Completed {
		t.Error("Round should be unresolved")
	}
	for _, row := range view.Players {
		if row.PointsAfter != nil {
			t.Error("PointsAfter should be absent before resolution")
		}
	}

	if _, err := m.ResolveGuess(r.ID, mantriOf(r), chorOf(r)); err != nil {
		t.Fatalf("ResolveGuess failed: %v", err)
	}

	view, err = m.Result(r.ID)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if !view.Completed || view.Guess == nil {
		t.Fatal("Resolved round should report completion and the guess")
	}
	for _, row := range view.Players {
		if row.PointsAfter == nil {
			t.Errorf("PointsAfter missing for %s", row.Name)
		} else if *row.PointsAfter != row.Total {
			// One resolved round: cumulative equals that round's after-points.
			t.Errorf("Expected total %d for %s, got %d", *row.PointsAfter, row.Name, row.Total)
		}
	}
}

func TestManager_Leaderboard_Ordering(t *testing.T) {
	m := newTestManager(10)
	r, _ := fillRoom(t, m)

	r.mu.Lock()
	ids := r.seatedIDs()
	r.ledger.Credit(ids[0], 1500)
	r.ledger.Credit(ids[1], 800)
	r.ledger.Credit(ids[2], 800)
	// ids[3] stays at 0.
	r.mu.Unlock()

	rows, err := m.Leaderboard(r.ID)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}

	wantOrder := []string{ids[0], ids[1], ids[2], ids[3]}
	for i, want := range wantOrder {
		if rows[i].PlayerID != want {
			t.Errorf("Row %d: expected %s, got %s", i, want, rows[i].PlayerID)
		}
	}
	if rows[1].Points != 800 || rows[2].Points != 800 {
		t.Error("Tied rows should both report 800")
	}
}

func TestManager_Leaderboard_UnknownName(t *testing.T) {
	m := newTestManager(11)
	r, _ := fillRoom(t, m)

	r.mu.Lock()
	r.ledger.Credit("ghost", 50)
	r.mu.Unlock()

	rows, err := m.Leaderboard(r.ID)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	found := false
	for _, row := range rows {
		if row.PlayerID == "ghost" {
			found = true
			if row.Name != "Unknown" {
				t.Errorf("Expected Unknown name for ghost, got %s", row.Name)
			}
		}
	}
	if !found {
		t.Fatal("Ledger entry without a player record should still be listed")
	}
}

func TestManager_ListPlayers(t *testing.T) {
	m := newTestManager(12)
	r, _ := fillRoom(t, m)
	if _, err := m.JoinRoom(r.ID, "W"); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}

	view, err := m.ListPlayers(r.ID)
	if err != nil {
		t.Fatalf("ListPlayers failed: %v", err)
	}
	if len(view.Players) != 4 {
		t.Errorf("Expected 4 seated players, got %d", len(view.Players))
	}
	if view.WaitlistCount != 1 {
		t.Errorf("Expected waitlist count 1, got %d", view.WaitlistCount)
	}
	if view.Phase != string(state.PhaseGuessing) {
		t.Errorf("Expected phase %s, got %s", state.PhaseGuessing, view.Phase)
	}
}

func TestManager_Snapshot(t *testing.T) {
	m := newTestManager(13)
	r, _ := fillRoom(t, m)

	snap, err := m.Snapshot(r.ID)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.RoomID != r.ID {
		t.Errorf("Expected room id %s, got %s", r.ID, snap.RoomID)
	}
	if snap.RoundNumber != 1 {
		t.Errorf("Expected round number 1, got %d", snap.RoundNumber)
	}
	if len(snap.Seated) != 4 || len(snap.Scores) != 4 {
		t.Errorf("Expected 4 seated and 4 scores, got %d and %d", len(snap.Seated), len(snap.Scores))
	}
	if snap.Phase != "guessing" {
		t.Errorf("Expected phase guessing, got %s", snap.Phase)
	}
}

func TestManager_Counts(t *testing.T) {
	m := newTestManager(14)
	r, _ := fillRoom(t, m)
	if _, err := m.JoinRoom(r.ID, "W"); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	m.CreateRoom("solo", "")

	rooms, seated, waitlisted := m.Counts()
	if rooms != 2 {
		t.Errorf("Expected 2 rooms, got %d", rooms)
	}
	if seated != 5 {
		t.Errorf("Expected 5 seated players, got %d", seated)
	}
	if waitlisted != 1 {
		t.Errorf("Expected 1 waitlisted player, got %d", waitlisted)
	}
}
