// Package session runs a single drill pass over a deck.
package session

import "github.com/verte-zerg/flashdrill/internal/model"

// Phase is the coarse state of a session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseActive
	PhaseComplete
	PhaseEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	case PhaseEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// State is an immutable view of a session. The engine replaces it wholesale
// on every transition.
//
// Invariants: 0 <= Position <= len(Deck); Phase == PhaseComplete iff
// Position == len(Deck) for a non-empty deck; Tally.Total() == Position,
// plus one while Scored is set and the advance is still pending.
type State struct {
	Phase      Phase
	Mode       model.Mode
	Category   model.Category
	Generation uint64
	Deck       []model.Item
	Position   int
	Flipped    bool
	// Scored is set between an answer and the deferred advance.
	Scored      bool
	LastCorrect bool
	Tally       model.Tally
	Missed      []model.Item
}

// Completed reports whether every item in the deck has been answered.
func (s State) Completed() bool {
	return s.Phase == PhaseComplete
}

// Current returns the item at Position while the session is active.
func (s State) Current() (model.Item, bool) {
	if s.Phase != PhaseActive || s.Position >= len(s.Deck) {
		return model.Item{}, false
	}
	return s.Deck[s.Position], true
}

// Remaining returns how many items are left, counting the current one.
func (s State) Remaining() int {
	return len(s.Deck) - s.Position
}

func (s State) clone() State {
	out := s
	out.Deck = cloneItems(s.Deck)
	out.Missed = cloneItems(s.Missed)
	return out
}

func cloneItems(items []model.Item) []model.Item {
	if items == nil {
		return nil
	}
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}
