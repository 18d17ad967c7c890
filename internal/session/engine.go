package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/flashdrill/internal/logger"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/shuffle"
)

// DefaultAdvanceDelay is how long scored feedback stays on screen.
const DefaultAdvanceDelay = time.Second

// DefaultRedoAdvanceDelay is the shorter pause used between redo items.
const DefaultRedoAdvanceDelay = 300 * time.Millisecond

// Source supplies the items of a category.
type Source interface {
	ItemsByCategory(category model.Category) []model.Item
}

// MissedStore is the persisted redo queue.
type MissedStore interface {
	Add(ctx context.Context, item model.Item)
	Remove(ctx context.Context, item model.Item)
	ReplaceAll(ctx context.Context, items []model.Item)
	Items() []model.Item
	Contains(key model.ItemKey) bool
}

// Recorder accumulates per-category answer counters.
type Recorder interface {
	Record(ctx context.Context, category model.Category, outcome model.Outcome)
}

// Navigator receives the terminal signals of a session.
type Navigator interface {
	SessionComplete(summary model.SessionSummary)
	RedoRequested(missed []model.Item)
}

// Config wires an Engine to its collaborators. Source is required for
// category sessions and Missed for redo sessions; the rest are optional.
type Config struct {
	Source    Source
	Missed    MissedStore
	Progress  Recorder
	Navigator Navigator
	Scheduler Scheduler
	// Mode labels category sessions; zero means model.ModeStudy.
	Mode model.Mode
	// Delay overrides the deferred-advance pause; zero uses the mode default.
	Delay  time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

type ticket struct {
	generation uint64
	position   int
}

// Engine drives one drill session. All methods are safe to call from the
// scheduler's goroutine as well as the caller's.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	log   *slog.Logger
	state State
	// original holds the unshuffled source list used by Reset.
	original  []model.Item
	id        string
	startedAt time.Time
}

// New returns an engine in the loading phase.
func New(cfg Config) *Engine {
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg, log: logger.OrDefault(cfg.Logger)}
}

// NewStudy builds and initializes a category session.
func NewStudy(cfg Config, category model.Category, seed *int64) *Engine {
	e := New(cfg)
	e.Initialize(category, seed)
	return e
}

// NewRedo builds and initializes a redo session over the missed store.
func NewRedo(cfg Config, seed *int64) *Engine {
	e := New(cfg)
	e.InitializeRedo(seed)
	return e
}

// Initialize loads category from the source and starts a fresh pass.
func (e *Engine) Initialize(category model.Category, seed *int64) {
	var items []model.Item
	if e.cfg.Source != nil {
		items = e.cfg.Source.ItemsByCategory(category)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.original = cloneItems(items)
	e.start(e.categoryMode(), category, seed)
}

// InitializeRedo starts a redo pass over the current contents of the missed store.
func (e *Engine) InitializeRedo(seed *int64) {
	var items []model.Item
	if e.cfg.Missed != nil {
		items = e.cfg.Missed.Items()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.original = cloneItems(items)
	e.start(model.ModeRedo, "", seed)
}

func (e *Engine) categoryMode() model.Mode {
	if e.cfg.Mode == "" || e.cfg.Mode == model.ModeRedo {
		return model.ModeStudy
	}
	return e.cfg.Mode
}

func (e *Engine) start(mode model.Mode, category model.Category, seed *int64) {
	deck := shuffle.Shuffle(e.original, seed)
	phase := PhaseActive
	if len(deck) == 0 {
		phase = PhaseEmpty
	}
	e.id = uuid.NewString()
	e.startedAt = e.cfg.Now()
	e.state = State{
		Phase:      phase,
		Mode:       mode,
		Category:   category,
		Generation: e.state.Generation + 1,
		Deck:       deck,
	}
	e.log.Debug("session started", "session_id", e.id, "mode", mode, "category", category, "items", len(deck))
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Current returns the item being drilled, if any.
func (e *Engine) Current() (model.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Current()
}

// ID returns the identifier of the current pass.
func (e *Engine) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// Flip reveals the answer side of the current item. It is idempotent and
// ignored once the item has been scored.
func (e *Engine) Flip() {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	if st.Phase != PhaseActive || st.Scored || st.Flipped {
		return
	}
	next := st.clone()
	next.Flipped = true
	e.state = next
}

// Answer scores the current item. It reports false when the call was ignored
// because the session is not active or the item was already scored.
func (e *Engine) Answer(isCorrect bool) bool {
	e.mu.Lock()
	notify, ok := e.answerLocked(isCorrect)
	e.mu.Unlock()
	notify()
	return ok
}

func (e *Engine) answerLocked(isCorrect bool) (func(), bool) {
	st := e.state
	if st.Phase != PhaseActive || st.Scored {
		e.log.Debug("ignoring answer", "session_id", e.id, "phase", st.Phase, "scored", st.Scored)
		return func() {}, false
	}
	ctx := context.Background()
	item := st.Deck[st.Position]
	outcome := model.OutcomeOf(isCorrect)

	next := st.clone()
	next.Tally = next.Tally.Add(outcome)
	next.Scored = true
	next.LastCorrect = isCorrect
	if !isCorrect {
		next.Missed = append(next.Missed, item)
	}

	switch st.Mode {
	case model.ModeRedo:
		if isCorrect && e.cfg.Missed != nil {
			e.cfg.Missed.Remove(ctx, item)
		}
		next.Deck = e.pruneTail(next.Deck, next.Position+1)
	default:
		if !isCorrect && e.cfg.Missed != nil {
			e.cfg.Missed.Add(ctx, item)
		}
		if e.cfg.Progress != nil {
			e.cfg.Progress.Record(ctx, st.Category, outcome)
		}
	}

	if next.Position >= len(next.Deck)-1 {
		e.state = e.completed(next)
		return e.completionNotice(), true
	}

	e.state = next
	t := ticket{generation: next.Generation, position: next.Position}
	e.cfg.Scheduler.Schedule(e.delay(), func() { e.advance(t) })
	return func() {}, true
}

// advance moves past a scored item if the ticket still matches the state it
// was issued for.
func (e *Engine) advance(t ticket) {
	e.mu.Lock()
	notify := e.advanceLocked(t)
	e.mu.Unlock()
	notify()
}

func (e *Engine) advanceLocked(t ticket) func() {
	st := e.state
	if st.Phase != PhaseActive || !st.Scored || st.Generation != t.generation || st.Position != t.position {
		e.log.Debug("discarding stale advance", "session_id", e.id, "ticket_position", t.position, "position", st.Position)
		return func() {}
	}
	next := st.clone()
	next.Position++
	next.Flipped = false
	next.Scored = false
	if st.Mode == model.ModeRedo {
		next.Deck = e.pruneTail(next.Deck, next.Position)
		if next.Position >= len(next.Deck) {
			e.state = e.completed(next)
			return e.completionNotice()
		}
	}
	e.state = next
	return func() {}
}

// pruneTail drops unanswered redo items that are no longer in the missed
// store, so the pass never steps onto an item removed elsewhere.
func (e *Engine) pruneTail(deck []model.Item, from int) []model.Item {
	if e.cfg.Missed == nil || from >= len(deck) {
		return deck
	}
	out := deck[:from:from]
	for _, it := range deck[from:] {
		if e.cfg.Missed.Contains(it.Key()) {
			out = append(out, it)
		}
	}
	return out
}

func (e *Engine) completed(st State) State {
	st.Phase = PhaseComplete
	st.Position = len(st.Deck)
	st.Flipped = false
	st.Scored = false
	return st
}

func (e *Engine) completionNotice() func() {
	nav := e.cfg.Navigator
	summary := model.SessionSummary{
		ID:        e.id,
		Mode:      e.state.Mode,
		Category:  e.state.Category,
		StartedAt: e.startedAt,
		EndedAt:   e.cfg.Now(),
		Tally:     e.state.Tally,
	}
	e.log.Info("session complete", "session_id", summary.ID, "mode", summary.Mode,
		"category", summary.Category, "correct", summary.Tally.Correct, "incorrect", summary.Tally.Incorrect)
	if nav == nil {
		return func() {}
	}
	return func() { nav.SessionComplete(summary) }
}

func (e *Engine) delay() time.Duration {
	if e.cfg.Delay > 0 {
		return e.cfg.Delay
	}
	if e.state.Mode == model.ModeRedo {
		return DefaultRedoAdvanceDelay
	}
	return DefaultAdvanceDelay
}

// Reset starts a new pass over the original list with a fresh shuffle. A
// category session reuses the category's full item list; a redo session
// reloads the missed store.
func (e *Engine) Reset(seed *int64) {
	e.mu.Lock()
	mode := e.state.Mode
	category := e.state.Category
	e.mu.Unlock()
	if mode == model.ModeRedo {
		e.InitializeRedo(seed)
		return
	}
	if e.cfg.Source == nil {
		e.mu.Lock()
		e.start(e.categoryMode(), category, seed)
		e.mu.Unlock()
		return
	}
	e.Initialize(category, seed)
}

// RequestRedo hands this session's missed items to the missed store and
// signals the navigator to open a redo session.
func (e *Engine) RequestRedo() {
	e.mu.Lock()
	missed := cloneItems(e.state.Missed)
	e.mu.Unlock()
	if missed == nil {
		missed = []model.Item{}
	}
	if e.cfg.Missed != nil {
		e.cfg.Missed.ReplaceAll(context.Background(), missed)
	}
	if e.cfg.Navigator != nil {
		e.cfg.Navigator.RedoRequested(cloneItems(missed))
	}
}
