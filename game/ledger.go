package game

// Ledger accumulates per-player point totals for one room across every
// resolved round. It is additive only and imposes no sign constraint; the
// room's lock guards it.
type Ledger struct {
	totals map[string]int
	order  []string // insertion order, the leaderboard tie-breaker
}

func NewLedger() *Ledger {
	return &Ledger{totals: make(map[string]int)}
}

// Ensure creates a zero-valued entry for id if none exists. Idempotent.
func (l *Ledger) Ensure(id string) {
	if _, exists := l.totals[id]; exists {
		return
	}
	l.totals[id] = 0
	l.order = append(l.order, id)
}

// Credit adds amount to id's total, creating the entry if needed.
func (l *Ledger) Credit(id string, amount int) {
	l.Ensure(id)
	l.totals[id] += amount
}

// EntryFor returns id's total, 0 for unknown ids.
func (l *Ledger) EntryFor(id string) int {
	return l.totals[id]
}

// IDs returns every ledger id in insertion order.
func (l *Ledger) IDs() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Snapshot returns a copy of the totals for reporting.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.totals))
	for id, pts := range l.totals {
		out[id] = pts
	}
	return out
}
