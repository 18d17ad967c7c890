package quiz

import "strings"

// Match compares a typed response to the expected answer. Only surrounding
// whitespace and letter case are ignored.
func Match(input, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(input), strings.TrimSpace(answer))
}

// FillBlank scores free-text responses.
type FillBlank struct {
	*run

	inputAt cursor
	input   string
	results map[cursor]bool
}

// NewFillBlank returns a fill-in-the-blank quiz over scorer.
func NewFillBlank(scorer Scorer, onComplete CompleteFunc) *FillBlank {
	return &FillBlank{
		run:     newRun(scorer, onComplete),
		results: map[cursor]bool{},
	}
}

// SetInput replaces the pending response for the current item.
func (q *FillBlank) SetInput(s string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, at, _, _ := q.sync()
	q.inputAt = at
	q.input = s
}

// Input returns the pending response. It is cleared when the item changes.
func (q *FillBlank) Input() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, at, _, _ := q.sync()
	if q.inputAt != at {
		return ""
	}
	return q.input
}

// CanSubmit reports whether Submit would be accepted.
func (q *FillBlank) CanSubmit() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, at, _, ok := q.sync()
	return q.canSubmit(at, ok)
}

func (q *FillBlank) canSubmit(at cursor, active bool) bool {
	if !active || q.answered[at] || q.inputAt != at {
		return false
	}
	return strings.TrimSpace(q.input) != ""
}

// Submit scores the pending response. It reports whether the response was
// correct and whether it was accepted at all.
func (q *FillBlank) Submit() (correct, accepted bool) {
	q.mu.Lock()
	_, at, item, ok := q.sync()
	if !q.canSubmit(at, ok) {
		q.mu.Unlock()
		return false, false
	}
	correct = Match(q.input, item.Answer)
	notify, accepted := q.score(at, correct)
	if accepted {
		q.results[at] = correct
	}
	q.mu.Unlock()
	notify()
	return correct, accepted
}

// Result returns the outcome shown for the current item, if one was scored.
func (q *FillBlank) Result() (correct, shown bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, at, _, _ := q.sync()
	correct, shown = q.results[at]
	return correct, shown
}
