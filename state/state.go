package state

import (
	"errors"
	"sync"
)

// Phase is a room's position in the round lifecycle.
type Phase string

const (
	// PhaseWaiting: fewer than the full slate seated, no round in play.
	PhaseWaiting Phase = "waiting"
	// PhaseGuessing: roles dealt, waiting for the Mantri's guess.
	PhaseGuessing Phase = "guessing"
	// PhaseSettled: the current round is resolved; the room can advance.
	PhaseSettled Phase = "settled"
)

// ErrTransitionNotAllowed is returned when a phase transition is not allowed.
var ErrTransitionNotAllowed = errors.New("phase transition not allowed")

// Machine validates room phase transitions against a fixed table.
type Machine struct {
	current     Phase
	transitions map[Phase]map[Phase]bool
	mutex       sync.RWMutex
}

// NewMachine builds a machine in PhaseWaiting with the room lifecycle table:
// seats fill and a round is dealt (waiting → guessing), the guess resolves
// (guessing → settled), the room re-deals (settled → guessing) or empties a
// seat (settled → waiting), and a force-assign re-deals over an unresolved
// round (guessing → guessing).
func NewMachine() *Machine {
	m := &Machine{
		current:     PhaseWaiting,
		transitions: make(map[Phase]map[Phase]bool),
	}
	m.allow(PhaseWaiting, PhaseWaiting)
	m.allow(PhaseWaiting, PhaseGuessing)
	m.allow(PhaseGuessing, PhaseGuessing)
	m.allow(PhaseGuessing, PhaseSettled)
	m.allow(PhaseSettled, PhaseGuessing)
	m.allow(PhaseSettled, PhaseWaiting)
	return m
}

func (m *Machine) allow(from, to Phase) {
	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[Phase]bool)
	}
	m.transitions[from][to] = true
}

// Current returns the machine's phase.
func (m *Machine) Current() Phase {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

// To moves the machine to next if the table allows it.
func (m *Machine) To(next Phase) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.transitions[m.current][next] {
		return ErrTransitionNotAllowed
	}
	m.current = next
	return nil
}
