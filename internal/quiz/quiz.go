// Package quiz layers answer capture on top of the session engine. Each
// variant decides whether a response is correct and then feeds the result to
// the engine's scoring contract.
package quiz

import (
	"sync"

	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/session"
)

// Scorer is the part of the session engine a quiz drives.
type Scorer interface {
	Answer(isCorrect bool) bool
	Snapshot() session.State
}

// CompleteFunc receives the quiz's own tally once the deck is exhausted.
type CompleteFunc func(model.Tally)

type cursor struct {
	generation uint64
	position   int
}

// run tracks per-question locking and the quiz-local tally. A new engine
// generation starts a new run.
type run struct {
	mu         sync.Mutex
	scorer     Scorer
	onComplete CompleteFunc

	generation uint64
	tally      model.Tally
	answered   map[cursor]bool
	done       bool
}

func newRun(scorer Scorer, onComplete CompleteFunc) *run {
	return &run{scorer: scorer, onComplete: onComplete, answered: map[cursor]bool{}}
}

// sync returns the current cursor and item, resetting the run when the
// engine started a new pass. Caller holds mu.
func (r *run) sync() (session.State, cursor, model.Item, bool) {
	st := r.scorer.Snapshot()
	if st.Generation != r.generation {
		r.generation = st.Generation
		r.tally = model.Tally{}
		r.answered = map[cursor]bool{}
		r.done = false
	}
	at := cursor{generation: st.Generation, position: st.Position}
	item, ok := st.Current()
	return st, at, item, ok
}

// score forwards one result for the item at cursor to the engine and counts
// it only when the engine accepted it. The item is locked either way. It
// returns the completion callback to run outside the lock.
func (r *run) score(at cursor, correct bool) (func(), bool) {
	r.answered[at] = true
	if !r.scorer.Answer(correct) {
		return func() {}, false
	}
	r.tally = r.tally.Add(model.OutcomeOf(correct))
	if r.done || !r.scorer.Snapshot().Completed() {
		return func() {}, true
	}
	r.done = true
	tally := r.tally
	cb := r.onComplete
	if cb == nil {
		return func() {}, true
	}
	return func() { cb(tally) }, true
}

// Tally returns the results counted in the current run.
func (r *run) Tally() model.Tally {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync()
	return r.tally
}

// Done reports whether the current run reached the end of the deck.
func (r *run) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync()
	return r.done
}
