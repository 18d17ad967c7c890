package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/flashdrill/internal/dataset"
	"github.com/verte-zerg/flashdrill/internal/incorrect"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/progress"
	"github.com/verte-zerg/flashdrill/internal/shuffle"
	"github.com/verte-zerg/flashdrill/internal/store"
)

type recordingNavigator struct {
	mu        sync.Mutex
	summaries []model.SessionSummary
	redo      [][]model.Item
}

func (n *recordingNavigator) SessionComplete(summary model.SessionSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, summary)
}

func (n *recordingNavigator) RedoRequested(missed []model.Item) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redo = append(n.redo, missed)
}

type fixture struct {
	kv       *store.Memory
	missed   *incorrect.Store
	progress *progress.Store
	nav      *recordingNavigator
	sched    *ManualScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemory()
	f := &fixture{
		kv:       kv,
		missed:   incorrect.New(kv, nil),
		progress: progress.New(kv, nil),
		nav:      &recordingNavigator{},
		sched:    &ManualScheduler{},
	}
	f.missed.Load(context.Background())
	f.progress.Load(context.Background())
	return f
}

func (f *fixture) config() Config {
	return Config{
		Source:    dataset.Builtin(),
		Missed:    f.missed,
		Progress:  f.progress,
		Navigator: f.nav,
		Scheduler: f.sched,
	}
}

func checkInvariants(t *testing.T, st State) {
	t.Helper()
	require.GreaterOrEqual(t, st.Position, 0)
	require.LessOrEqual(t, st.Position, len(st.Deck))
	pending := 0
	if st.Scored {
		pending = 1
	}
	require.Equal(t, st.Position+pending, st.Tally.Total())
	if len(st.Deck) > 0 {
		require.Equal(t, st.Completed(), st.Position == len(st.Deck))
	}
}

// answerAll scores every remaining item with the result of score, firing the
// deferred advance after each answer.
func answerAll(t *testing.T, e *Engine, sched *ManualScheduler, score func(i int) bool) {
	t.Helper()
	for i := 0; ; i++ {
		st := e.Snapshot()
		if st.Phase != PhaseActive {
			return
		}
		checkInvariants(t, st)
		require.True(t, e.Answer(score(i)))
		checkInvariants(t, e.Snapshot())
		sched.RunAll()
	}
}

func TestNewEngineIsLoading(t *testing.T) {
	e := New(Config{})
	assert.Equal(t, PhaseLoading, e.Snapshot().Phase)
	assert.False(t, e.Answer(true))
}

func TestInitializeShufflesDeterministically(t *testing.T) {
	f := newFixture(t)
	a := NewStudy(f.config(), "animals", shuffle.Seed(7))
	b := NewStudy(f.config(), "animals", shuffle.Seed(7))

	sa, sb := a.Snapshot(), b.Snapshot()
	assert.Equal(t, PhaseActive, sa.Phase)
	assert.Equal(t, sa.Deck, sb.Deck)
	assert.ElementsMatch(t, dataset.Builtin().ItemsByCategory("animals"), sa.Deck)
	assert.NotEqual(t, a.ID(), b.ID())
	checkInvariants(t, sa)
}

func TestScenarioOneMissInAnimals(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(42))
	first, ok := e.Current()
	require.True(t, ok)

	answerAll(t, e, f.sched, func(i int) bool { return i != 0 })

	st := e.Snapshot()
	assert.True(t, st.Completed())
	assert.Equal(t, model.Tally{Correct: 4, Incorrect: 1}, st.Tally)
	require.Len(t, st.Missed, 1)
	assert.Equal(t, first, st.Missed[0])
	assert.Equal(t, []model.Item{first}, f.missed.Items())

	assert.Equal(t, model.CategoryStats{Studied: 5, Correct: 4, Incorrect: 1}, f.progress.Category("animals"))
	assert.Equal(t, 80, f.progress.Accuracy())

	require.Len(t, f.nav.summaries, 1)
	summary := f.nav.summaries[0]
	assert.Equal(t, e.ID(), summary.ID)
	assert.Equal(t, model.ModeStudy, summary.Mode)
	assert.Equal(t, model.Category("animals"), summary.Category)
	assert.Equal(t, st.Tally, summary.Tally)
}

func TestAnswerAfterCompletionIsIgnored(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(1))
	answerAll(t, e, f.sched, func(i int) bool { return i%2 == 0 })
	before := e.Snapshot()

	assert.False(t, e.Answer(false))
	assert.False(t, e.Answer(true))

	after := e.Snapshot()
	assert.Equal(t, before.Tally, after.Tally)
	assert.Equal(t, before.Missed, after.Missed)
	assert.Len(t, f.nav.summaries, 1)
}

func TestAnswerOncePerItem(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "food", shuffle.Seed(3))

	require.True(t, e.Answer(false))
	assert.False(t, e.Answer(true))

	st := e.Snapshot()
	assert.Equal(t, model.Tally{Incorrect: 1}, st.Tally)
	assert.Equal(t, 0, st.Position)
	assert.True(t, st.Scored)
	assert.Equal(t, 1, f.sched.Pending())
	checkInvariants(t, st)
}

func TestDeferredAdvance(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "verbs", shuffle.Seed(5))
	e.Flip()
	require.True(t, e.Answer(true))

	assert.Equal(t, DefaultAdvanceDelay, f.sched.LastDelay())
	st := e.Snapshot()
	assert.Equal(t, 0, st.Position)
	assert.True(t, st.Flipped)

	require.True(t, f.sched.RunNext())
	st = e.Snapshot()
	assert.Equal(t, 1, st.Position)
	assert.False(t, st.Flipped)
	assert.False(t, st.Scored)

	// A duplicate firing of the same task must not move past item 1.
	e.advance(ticket{generation: st.Generation, position: 0})
	assert.Equal(t, 1, e.Snapshot().Position)
}

func TestConfiguredDelay(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.Delay = 250 * time.Millisecond
	e := NewStudy(cfg, "verbs", nil)
	e.Answer(true)
	assert.Equal(t, 250*time.Millisecond, f.sched.LastDelay())
}

func TestLastAnswerCompletesSynchronously(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(9))
	for i := 0; i < 4; i++ {
		require.True(t, e.Answer(true))
		f.sched.RunAll()
	}
	require.True(t, e.Answer(true))

	assert.Equal(t, 0, f.sched.Pending())
	st := e.Snapshot()
	assert.True(t, st.Completed())
	assert.Equal(t, 5, st.Position)
	assert.Equal(t, 5, st.Tally.Correct)
	_, ok := e.Current()
	assert.False(t, ok)
}

func TestFlipIsIdempotent(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(11))

	e.Flip()
	once := e.Snapshot()
	e.Flip()
	assert.Equal(t, once, e.Snapshot())
	assert.True(t, once.Flipped)
}

func TestFlipIgnoredAfterScoring(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(11))
	e.Answer(true)
	e.Flip()
	assert.False(t, e.Snapshot().Flipped)
}

func TestUnknownCategoryIsEmpty(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "colors", nil)

	st := e.Snapshot()
	assert.Equal(t, PhaseEmpty, st.Phase)
	assert.Empty(t, st.Deck)
	assert.False(t, st.Completed())
	e.Flip()
	assert.False(t, e.Answer(true))
	assert.Empty(t, f.nav.summaries)
}

func TestResetDiscardsPendingAdvance(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(13))
	first := e.Snapshot().Deck
	require.True(t, e.Answer(false))
	require.Equal(t, 1, f.sched.Pending())

	e.Reset(shuffle.Seed(13))
	f.sched.RunAll()

	st := e.Snapshot()
	assert.Equal(t, PhaseActive, st.Phase)
	assert.Equal(t, 0, st.Position)
	assert.Equal(t, model.Tally{}, st.Tally)
	assert.Empty(t, st.Missed)
	assert.Equal(t, first, st.Deck)
	assert.Equal(t, model.Category("animals"), st.Category)
	checkInvariants(t, st)
}

func TestResetUsesFullCategoryList(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "food", shuffle.Seed(2))
	answerAll(t, e, f.sched, func(int) bool { return true })

	e.Reset(nil)
	st := e.Snapshot()
	assert.Len(t, st.Deck, 5)
	assert.Equal(t, PhaseActive, st.Phase)
}

func TestRequestRedoHandsOffMissed(t *testing.T) {
	f := newFixture(t)
	e := NewStudy(f.config(), "animals", shuffle.Seed(21))
	answerAll(t, e, f.sched, func(i int) bool { return i >= 2 })
	missed := e.Snapshot().Missed
	require.Len(t, missed, 2)

	// Items missed in earlier sessions are replaced by this session's list.
	f.missed.Add(context.Background(), dataset.Builtin().ItemsByCategory("verbs")[0])

	e.RequestRedo()

	assert.Equal(t, missed, f.missed.Items())
	require.Len(t, f.nav.redo, 1)
	assert.Equal(t, missed, f.nav.redo[0])
}

func TestRedoScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	animals := dataset.Builtin().ItemsByCategory("animals")
	f.missed.ReplaceAll(ctx, animals[:2])

	e := NewRedo(f.config(), shuffle.Seed(4))
	st := e.Snapshot()
	require.Equal(t, PhaseActive, st.Phase)
	require.Len(t, st.Deck, 2)
	assert.Equal(t, model.ModeRedo, st.Mode)
	first, second := st.Deck[0], st.Deck[1]

	require.True(t, e.Answer(true))
	assert.Equal(t, []model.Item{second}, f.missed.Items())
	assert.Equal(t, DefaultRedoAdvanceDelay, f.sched.LastDelay())
	f.sched.RunAll()

	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, second, current)
	require.True(t, e.Answer(false))

	st = e.Snapshot()
	assert.True(t, st.Completed())
	assert.Equal(t, model.Tally{Correct: 1, Incorrect: 1}, st.Tally)
	assert.Equal(t, []model.Item{second}, st.Missed)
	assert.Equal(t, []model.Item{second}, f.missed.Items())
	assert.NotContains(t, f.missed.Items(), first)

	// Reload from the same backing store.
	reloaded := incorrect.New(f.kv, nil)
	reloaded.Load(ctx)
	assert.Equal(t, []model.Item{second}, reloaded.Items())

	assert.Equal(t, model.CategoryStats{}, f.progress.Category("animals"))
	require.Len(t, f.nav.summaries, 1)
	assert.Equal(t, model.ModeRedo, f.nav.summaries[0].Mode)
}

func TestRedoSkipsItemsRemovedElsewhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.missed.ReplaceAll(ctx, dataset.Builtin().ItemsByCategory("food")[:3])

	e := NewRedo(f.config(), shuffle.Seed(8))
	deck := e.Snapshot().Deck
	require.Len(t, deck, 3)

	// Another session clears the last two entries while the first is shown.
	f.missed.Remove(ctx, deck[1])
	f.missed.Remove(ctx, deck[2])

	require.True(t, e.Answer(false))
	st := e.Snapshot()
	assert.True(t, st.Completed())
	assert.Len(t, st.Deck, 1)
	assert.Equal(t, 0, f.sched.Pending())
	checkInvariants(t, st)
}

func TestRedoPrunesAtAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.missed.ReplaceAll(ctx, dataset.Builtin().ItemsByCategory("verbs")[:3])

	e := NewRedo(f.config(), shuffle.Seed(8))
	deck := e.Snapshot().Deck
	require.True(t, e.Answer(true))

	f.missed.Remove(ctx, deck[1])
	f.missed.Remove(ctx, deck[2])
	f.sched.RunAll()

	st := e.Snapshot()
	assert.True(t, st.Completed())
	assert.Equal(t, 1, st.Position)
	assert.Equal(t, model.Tally{Correct: 1}, st.Tally)
	require.Len(t, f.nav.summaries, 1)
	checkInvariants(t, st)
}

func TestRedoWithEmptyStore(t *testing.T) {
	f := newFixture(t)
	e := NewRedo(f.config(), nil)
	assert.Equal(t, PhaseEmpty, e.Snapshot().Phase)
}

func TestTimerSchedulerAdvances(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.Scheduler = TimerScheduler{}
	cfg.Delay = time.Millisecond
	e := NewStudy(cfg, "animals", shuffle.Seed(1))

	require.True(t, e.Answer(true))
	assert.Eventually(t, func() bool {
		return e.Snapshot().Position == 1
	}, time.Second, 5*time.Millisecond)
}

func TestQuizModeLabelsSummary(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.Mode = model.ModeQuizBlank
	e := NewStudy(cfg, "food", shuffle.Seed(6))
	answerAll(t, e, f.sched, func(int) bool { return false })

	require.Len(t, f.nav.summaries, 1)
	assert.Equal(t, model.ModeQuizBlank, f.nav.summaries[0].Mode)
	assert.Equal(t, model.CategoryStats{Studied: 5, Incorrect: 5}, f.progress.Category("food"))
	assert.Len(t, f.missed.Items(), 5)
}
