package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/flashdrill/internal/dataset"
	"github.com/verte-zerg/flashdrill/internal/incorrect"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/progress"
	"github.com/verte-zerg/flashdrill/internal/shuffle"
	"github.com/verte-zerg/flashdrill/internal/store"
)

type memHistory struct {
	sessions []model.SessionSummary
}

func (h *memHistory) InsertSession(_ context.Context, s model.SessionSummary) error {
	h.sessions = append(h.sessions, s)
	return nil
}

func (h *memHistory) ListSessions(_ context.Context, _ model.HistoryFilter) ([]model.SessionAggregate, error) {
	out := make([]model.SessionAggregate, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, model.SessionAggregate{
			ID:        s.ID,
			Mode:      s.Mode,
			Category:  s.Category,
			EndedAt:   s.EndedAt,
			Correct:   s.Tally.Correct,
			Incorrect: s.Tally.Incorrect,
		})
	}
	return out, nil
}

func newTestDeps(t *testing.T) (Deps, *memHistory) {
	t.Helper()
	kv := store.NewMemory()
	missed := incorrect.New(kv, nil)
	missed.Load(context.Background())
	prog := progress.New(kv, nil)
	prog.Load(context.Background())
	history := &memHistory{}
	return Deps{
		Deck:     dataset.Builtin(),
		Missed:   missed,
		Progress: prog,
		History:  history,
		Config: model.Config{
			AdvanceDelay:     time.Millisecond,
			RedoAdvanceDelay: time.Millisecond,
			Seed:             shuffle.Seed(3),
		},
	}, history
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs any deferred advance it scheduled.
func press(t *testing.T, m *Model, s string) {
	t.Helper()
	_, cmd := m.Update(key(s))
	drive(m, cmd)
}

func drive(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drive(m, c)
		}
	case advanceMsg:
		_, next := m.Update(msg)
		drive(m, next)
	}
}

func TestStudyFlowRecordsHistory(t *testing.T) {
	deps, history := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeStudy, Category: "animals"})
	require.Equal(t, screenCard, m.screen)

	press(t, m, "y")
	assert.Equal(t, 0, m.engine.Snapshot().Tally.Total(), "answers are gated on flipping")

	for i := 0; i < 5; i++ {
		press(t, m, " ")
		if i == 0 {
			press(t, m, "n")
		} else {
			press(t, m, "y")
		}
	}

	require.Equal(t, screenSummary, m.screen)
	require.Len(t, history.sessions, 1)
	assert.Equal(t, model.Tally{Correct: 4, Incorrect: 1}, history.sessions[0].Tally)
	assert.Equal(t, 1, deps.Missed.Len())
	assert.Equal(t, 80, deps.Progress.Accuracy())

	view := m.View()
	assert.Contains(t, view, "Session complete")
	assert.Contains(t, view, "Accuracy: 80%")
	assert.Contains(t, view, "d redo missed")
}

func TestSummaryOpensRedo(t *testing.T) {
	deps, history := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeStudy, Category: "food"})
	for i := 0; i < 5; i++ {
		press(t, m, " ")
		press(t, m, map[bool]string{true: "y", false: "n"}[i >= 2])
	}
	require.Equal(t, screenSummary, m.screen)
	require.Equal(t, 2, deps.Missed.Len())

	press(t, m, "d")
	require.Equal(t, screenCard, m.screen)
	assert.Equal(t, model.ModeRedo, m.mode)
	assert.Len(t, m.engine.Snapshot().Deck, 2)

	press(t, m, " ")
	press(t, m, "y")
	press(t, m, " ")
	press(t, m, "n")

	require.Equal(t, screenSummary, m.screen)
	assert.Equal(t, 1, deps.Missed.Len())
	view := m.View()
	assert.Contains(t, view, "Redo complete")
	assert.Contains(t, view, "Remaining missed: 1")
	assert.Contains(t, view, "c continue redo")
	require.Len(t, history.sessions, 2)
	assert.Equal(t, model.ModeRedo, history.sessions[1].Mode)

	press(t, m, "c")
	require.Equal(t, screenCard, m.screen)
	assert.Len(t, m.engine.Snapshot().Deck, 1)
}

func TestClearAllWrongCards(t *testing.T) {
	deps, _ := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeStudy, Category: "verbs"})
	for i := 0; i < 5; i++ {
		press(t, m, " ")
		press(t, m, "n")
	}
	require.Equal(t, 5, deps.Missed.Len())

	press(t, m, "x")
	assert.False(t, deps.Missed.HasItems())
	assert.Contains(t, m.View(), "Cleared all wrong cards.")
}

func TestMultipleChoiceFlow(t *testing.T) {
	deps, history := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeQuizMC, Category: "animals"})
	require.Equal(t, screenChoice, m.screen)

	for i := 0; i < 5; i++ {
		item, ok := m.engine.Current()
		require.True(t, ok)
		idx := -1
		for j, opt := range m.choice.Options() {
			if opt == item.Answer {
				idx = j
			}
		}
		require.GreaterOrEqual(t, idx, 0)
		press(t, m, string(rune('1'+idx)))
	}

	require.Equal(t, screenSummary, m.screen)
	require.NotNil(t, m.quizTally)
	assert.Equal(t, model.Tally{Correct: 5}, *m.quizTally)
	require.Len(t, history.sessions, 1)
	assert.Equal(t, model.ModeQuizMC, history.sessions[0].Mode)
}

func TestFillBlankFlow(t *testing.T) {
	deps, _ := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeQuizBlank, Category: "food"})
	require.Equal(t, screenBlank, m.screen)

	item, ok := m.engine.Current()
	require.True(t, ok)
	m.Update(key(strings.ToUpper(item.Answer)))
	assert.True(t, m.blank.CanSubmit())

	_, cmd := m.Update(key("enter"))
	correct, shown := m.blank.Result()
	require.True(t, shown)
	assert.True(t, correct)
	assert.Contains(t, m.View(), "Correct!")

	drive(m, cmd)
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, 1, m.engine.Snapshot().Position)
}

func TestFillBlankAcceptsLongAnswer(t *testing.T) {
	answer := strings.Repeat("a", 70)
	deck, err := dataset.New([]model.Item{{
		Category:    "long",
		Prompt:      "largo",
		Answer:      answer,
		Distractors: []string{"b"},
	}})
	require.NoError(t, err)
	deps, _ := newTestDeps(t)
	deps.Deck = deck
	m := NewModel(deps, Start{Mode: model.ModeQuizBlank, Category: "long"})
	require.Equal(t, screenBlank, m.screen)

	m.Update(key(answer))
	assert.Equal(t, answer, m.input.Value())

	press(t, m, "enter")
	require.Equal(t, screenSummary, m.screen)
	require.NotNil(t, m.quizTally)
	assert.Equal(t, model.Tally{Correct: 1}, *m.quizTally)
}

func TestUnknownCategoryShowsEmpty(t *testing.T) {
	deps, _ := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeStudy, Category: "colors"})
	assert.Equal(t, screenEmpty, m.screen)
	assert.Contains(t, m.View(), "not found")

	press(t, m, "esc")
	assert.Equal(t, screenMenu, m.screen)
}

func TestMenuNavigation(t *testing.T) {
	deps, _ := newTestDeps(t)
	m := NewModel(deps, Start{})
	require.Equal(t, screenMenu, m.screen)
	assert.Contains(t, m.View(), "animals")

	press(t, m, "r")
	assert.Equal(t, screenMenu, m.screen)
	assert.Contains(t, m.View(), "No missed cards")

	press(t, m, "j")
	press(t, m, "enter")
	assert.Equal(t, screenCard, m.screen)
	assert.Equal(t, model.Category("food"), m.category)

	press(t, m, "esc")
	press(t, m, "t")
	assert.Equal(t, screenStats, m.screen)
	assert.Contains(t, m.View(), "Stats")
}

func TestStaleTickIsDropped(t *testing.T) {
	deps, _ := newTestDeps(t)
	m := NewModel(deps, Start{Mode: model.ModeStudy, Category: "animals"})
	m.Update(key(" "))
	_, cmd := m.Update(key("y"))
	require.NotNil(t, cmd)

	m.Update(key("esc"))
	require.Equal(t, screenMenu, m.screen)
	drive(m, cmd)
	assert.Equal(t, screenMenu, m.screen)
	assert.Nil(t, m.engine)
}

func TestRenderFooterFormats(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Missed.Add(context.Background(), dataset.Builtin().ItemsByCategory("verbs")[0])
	m := NewModel(deps, Start{Mode: model.ModeStudy, Category: "animals"})
	m.Update(key(" "))
	m.Update(key("n"))

	out := m.renderFooter()
	for _, want := range []string{"Card 1/5", "Correct 0 · Incorrect 1", "Missed queue 2"} {
		assert.Contains(t, out, want)
	}
}
