package quiz

import (
	"github.com/verte-zerg/flashdrill/internal/shuffle"
)

// MultipleChoice offers the answer among the item's distractors. Option
// order is drawn independently for every question.
type MultipleChoice struct {
	*run
	newSource func() shuffle.Source

	optionsAt cursor
	options   []string
	selected  map[cursor]string
}

// NewMultipleChoice returns a multiple-choice quiz over scorer.
func NewMultipleChoice(scorer Scorer, onComplete CompleteFunc) *MultipleChoice {
	return &MultipleChoice{
		run:       newRun(scorer, onComplete),
		newSource: func() shuffle.Source { return shuffle.NewSource(nil) },
		selected:  map[cursor]string{},
	}
}

// Options returns the shuffled choices for the current item, or nil when no
// item is active. Repeated calls for the same item return the same order.
func (q *MultipleChoice) Options() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.optionsLocked()
}

func (q *MultipleChoice) optionsLocked() []string {
	_, at, item, ok := q.sync()
	if !ok {
		return nil
	}
	if q.options == nil || q.optionsAt != at {
		choices := make([]string, 0, len(item.Distractors)+1)
		choices = append(choices, item.Distractors...)
		choices = append(choices, item.Answer)
		q.options = shuffle.WithSource(choices, q.newSource())
		q.optionsAt = at
	}
	out := make([]string, len(q.options))
	copy(out, q.options)
	return out
}

// Select scores option against the current item. It reports whether the
// option was correct and whether the selection was accepted; once an option
// is chosen further selections on that item are ignored.
func (q *MultipleChoice) Select(option string) (correct, accepted bool) {
	q.mu.Lock()
	_, at, item, ok := q.sync()
	if !ok || q.answered[at] {
		q.mu.Unlock()
		return false, false
	}
	correct = option == item.Answer
	notify, accepted := q.score(at, correct)
	if accepted {
		q.selected[at] = option
	}
	q.mu.Unlock()
	notify()
	return correct, accepted
}

// Selected returns the option chosen for the current item.
func (q *MultipleChoice) Selected() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, at, _, _ := q.sync()
	opt, ok := q.selected[at]
	return opt, ok
}

// Locked reports whether the current item already has a selection.
func (q *MultipleChoice) Locked() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, at, _, _ := q.sync()
	return q.answered[at]
}
