// Package tui provides the Bubble Tea drilling interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/flashdrill/internal/incorrect"
	"github.com/verte-zerg/flashdrill/internal/logger"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/progress"
	"github.com/verte-zerg/flashdrill/internal/quiz"
	"github.com/verte-zerg/flashdrill/internal/session"
)

// Deck is the dataset view the UI needs.
type Deck interface {
	Categories() []model.Category
	ItemsByCategory(category model.Category) []model.Item
}

// History stores and lists completed sessions.
type History interface {
	InsertSession(ctx context.Context, summary model.SessionSummary) error
	ListSessions(ctx context.Context, f model.HistoryFilter) ([]model.SessionAggregate, error)
}

// Deps wires the UI to the stores.
type Deps struct {
	Deck     Deck
	Missed   *incorrect.Store
	Progress *progress.Store
	History  History
	Config   model.Config
	Logger   *slog.Logger
}

// Start selects the first screen. A zero value opens the menu.
type Start struct {
	Mode     model.Mode
	Category model.Category
}

type screen int

const (
	screenMenu screen = iota
	screenCard
	screenChoice
	screenBlank
	screenSummary
	screenEmpty
	screenStats
)

const curveWindow = 5

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle      = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// advanceMsg carries a deferred engine step back onto the UI loop.
type advanceMsg struct {
	epoch int
	fn    func()
}

// tickScheduler turns engine timers into tea.Tick commands so every state
// change happens inside Update.
type tickScheduler struct {
	// epoch changes whenever the UI swaps engines; older ticks are dropped.
	epoch   int
	pending []tea.Cmd
}

func (s *tickScheduler) Schedule(delay time.Duration, fn func()) {
	epoch := s.epoch
	s.pending = append(s.pending, tea.Tick(delay, func(time.Time) tea.Msg {
		return advanceMsg{epoch: epoch, fn: fn}
	}))
}

func (s *tickScheduler) drain() tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// Model implements the Bubble Tea drilling UI.
type Model struct {
	deps  Deps
	log   *slog.Logger
	sched *tickScheduler

	width  int
	height int

	screen     screen
	categories []model.Category
	cursor     int

	mode      model.Mode
	category  model.Category
	engine    *session.Engine
	choice    *quiz.MultipleChoice
	blank     *quiz.FillBlank
	input     textinput.Model
	summary   *model.SessionSummary
	quizTally *model.Tally

	statsTable table.Model
	statsLines []string
	status     string
}

// NewModel constructs the drilling UI.
func NewModel(deps Deps, start Start) *Model {
	m := &Model{
		deps:       deps,
		log:        logger.OrDefault(deps.Logger),
		sched:      &tickScheduler{},
		categories: deps.Deck.Categories(),
		input:      newAnswerInput(),
	}
	switch start.Mode {
	case "":
		m.screen = screenMenu
	case model.ModeRedo:
		m.startRedo()
	default:
		m.startSession(start.Mode, start.Category)
	}
	return m
}

func newAnswerInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type the answer"
	input.CharLimit = 0
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenBlank {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, m.contentWidth()-4)
		return m, nil
	case advanceMsg:
		if msg.epoch != m.sched.epoch {
			return m, nil
		}
		msg.fn()
		if m.screen == screenBlank {
			m.input.Reset()
			m.blank.SetInput("")
		}
		return m, m.sched.drain()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		m.status = ""
		var cmd tea.Cmd
		switch m.screen {
		case screenMenu:
			cmd = m.updateMenu(msg)
		case screenCard:
			m.updateCard(msg)
		case screenChoice:
			m.updateChoice(msg)
		case screenBlank:
			cmd = m.updateBlank(msg)
		case screenSummary:
			cmd = m.updateSummary(msg)
		case screenStats:
			cmd = m.updateStats(msg)
		case screenEmpty:
			if msg.String() == "q" {
				return m, tea.Quit
			}
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.toMenu()
			}
		}
		return m, tea.Batch(cmd, m.sched.drain())
	}
	if m.screen == screenBlank {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case "enter", "s":
		if c, ok := m.selectedCategory(); ok {
			m.startSession(model.ModeStudy, c)
		}
	case "m":
		if c, ok := m.selectedCategory(); ok {
			m.startSession(model.ModeQuizMC, c)
		}
	case "f":
		if c, ok := m.selectedCategory(); ok {
			m.startSession(model.ModeQuizBlank, c)
			return textinput.Blink
		}
	case "r":
		if m.deps.Missed.HasItems() {
			m.startRedo()
		} else {
			m.status = "No missed cards to redo."
		}
	case "t":
		m.openStats()
	}
	return nil
}

func (m *Model) updateCard(msg tea.KeyMsg) {
	st := m.engine.Snapshot()
	switch msg.Type {
	case tea.KeyEsc:
		m.toMenu()
		return
	case tea.KeySpace, tea.KeyEnter:
		m.engine.Flip()
		return
	}
	switch msg.String() {
	case "y", "c":
		if st.Flipped {
			m.engine.Answer(true)
		}
	case "n", "x":
		if st.Flipped {
			m.engine.Answer(false)
		}
	}
}

func (m *Model) updateChoice(msg tea.KeyMsg) {
	if msg.Type == tea.KeyEsc {
		m.toMenu()
		return
	}
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return
	}
	idx := int(s[0] - '1')
	opts := m.choice.Options()
	if idx >= len(opts) {
		return
	}
	m.choice.Select(opts[idx])
}

func (m *Model) updateBlank(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.toMenu()
		return nil
	case tea.KeyEnter:
		m.blank.SetInput(m.input.Value())
		m.blank.Submit()
		return nil
	}
	if _, shown := m.blank.Result(); shown {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.blank.SetInput(m.input.Value())
	return cmd
}

func (m *Model) updateSummary(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc", "enter":
		m.toMenu()
	case "r":
		if m.mode != model.ModeRedo {
			m.restart()
		}
	case "d":
		if m.mode != model.ModeRedo && m.summary != nil && len(m.engine.Snapshot().Missed) > 0 {
			m.engine.RequestRedo()
		}
	case "c":
		if m.mode == model.ModeRedo && m.deps.Missed.HasItems() {
			m.restart()
		}
	case "x":
		m.deps.Missed.Clear(context.Background())
		m.status = "Cleared all wrong cards."
	}
	if m.screen == screenBlank {
		return textinput.Blink
	}
	return nil
}

func (m *Model) updateStats(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc", "enter":
		m.toMenu()
		return nil
	}
	var cmd tea.Cmd
	m.statsTable, cmd = m.statsTable.Update(msg)
	return cmd
}

func (m *Model) selectedCategory() (model.Category, bool) {
	if m.cursor < 0 || m.cursor >= len(m.categories) {
		return "", false
	}
	return m.categories[m.cursor], true
}

func (m *Model) engineConfig(mode model.Mode) session.Config {
	delay := m.deps.Config.AdvanceDelay
	if mode == model.ModeRedo {
		delay = m.deps.Config.RedoAdvanceDelay
	}
	return session.Config{
		Source:    m.deps.Deck,
		Missed:    m.deps.Missed,
		Progress:  m.deps.Progress,
		Navigator: m,
		Scheduler: m.sched,
		Mode:      mode,
		Delay:     delay,
		Logger:    m.log,
	}
}

func (m *Model) startSession(mode model.Mode, category model.Category) {
	m.sched.epoch++
	m.choice = nil
	m.blank = nil
	m.mode = mode
	m.category = category
	m.summary = nil
	m.quizTally = nil
	m.engine = session.NewStudy(m.engineConfig(mode), category, m.deps.Config.Seed)
	m.enterDrillScreen()
}

func (m *Model) startRedo() {
	m.sched.epoch++
	m.choice = nil
	m.blank = nil
	m.mode = model.ModeRedo
	m.category = ""
	m.summary = nil
	m.quizTally = nil
	m.engine = session.NewRedo(m.engineConfig(model.ModeRedo), m.deps.Config.Seed)
	m.enterDrillScreen()
}

func (m *Model) restart() {
	m.summary = nil
	m.quizTally = nil
	m.engine.Reset(m.deps.Config.Seed)
	m.enterDrillScreen()
}

func (m *Model) enterDrillScreen() {
	if m.engine.Snapshot().Phase == session.PhaseEmpty {
		m.screen = screenEmpty
		return
	}
	switch m.mode {
	case model.ModeQuizMC:
		if m.choice == nil {
			m.choice = quiz.NewMultipleChoice(m.engine, m.quizComplete)
		}
		m.screen = screenChoice
	case model.ModeQuizBlank:
		if m.blank == nil {
			m.blank = quiz.NewFillBlank(m.engine, m.quizComplete)
		}
		m.input.Reset()
		m.input.Focus()
		m.screen = screenBlank
	default:
		m.screen = screenCard
	}
}

func (m *Model) toMenu() {
	m.sched.epoch++
	m.engine = nil
	m.choice = nil
	m.blank = nil
	m.summary = nil
	m.quizTally = nil
	m.input.Blur()
	m.screen = screenMenu
}

func (m *Model) quizComplete(t model.Tally) {
	m.quizTally = &t
}

// SessionComplete implements session.Navigator.
func (m *Model) SessionComplete(summary model.SessionSummary) {
	m.summary = &summary
	m.input.Blur()
	m.screen = screenSummary
	if m.deps.History == nil {
		return
	}
	if err := m.deps.History.InsertSession(context.Background(), summary); err != nil {
		m.log.Warn("failed to save session", "session_id", summary.ID, "error", err)
	}
}

// RedoRequested implements session.Navigator.
func (m *Model) RedoRequested(_ []model.Item) {
	m.startRedo()
}

func (m *Model) openStats() {
	ctx := context.Background()
	perCategory := m.deps.Progress.Snapshot()
	m.statsTable = buildStatsTable(perCategory, m.contentWidth(), maxInt(3, m.height-8))
	m.statsTable.Focus()
	m.statsLines = nil
	totals := m.deps.Progress.Totals()
	m.statsLines = append(m.statsLines, fmt.Sprintf("Studied %d · Correct %d · Incorrect %d · Accuracy %d%%",
		totals.Studied, totals.Correct, totals.Incorrect, totals.Accuracy()))
	if m.deps.History != nil {
		sessions, err := m.deps.History.ListSessions(ctx, model.HistoryFilter{Last: 50})
		if err != nil {
			m.log.Warn("failed to load session history", "error", err)
		} else if len(sessions) > 0 {
			m.statsLines = append(m.statsLines, fmt.Sprintf("Sessions %d · Trend |%s|",
				len(sessions), sessionTrend(sessions, curveWindow)))
		}
	}
	m.screen = screenStats
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenMenu:
		body = m.viewMenu()
	case screenCard:
		body = m.viewCard()
	case screenChoice:
		body = m.viewChoice()
	case screenBlank:
		body = m.viewBlank()
	case screenSummary:
		body = m.viewSummary()
	case screenEmpty:
		body = fmt.Sprintf("Category %q was not found or has no cards.\n\n%s",
			m.category, footerStyle.Render("esc menu"))
	case screenStats:
		body = m.viewStats()
	}
	if m.status != "" {
		body += "\n\n" + pendingStyle.Render(m.status)
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("flashdrill"))
	b.WriteString("\n\n")
	for i, c := range m.categories {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		stats := m.deps.Progress.Category(c)
		line := fmt.Sprintf("%s%-10s %2d cards", marker, c, len(m.deps.Deck.ItemsByCategory(c)))
		if stats.Studied > 0 {
			line += fmt.Sprintf("  %3d%%", stats.Accuracy())
		}
		if i == m.cursor {
			line = answerStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if n := m.deps.Missed.Len(); n > 0 {
		b.WriteString(fmt.Sprintf("Redo missed cards (%d): press r\n\n", n))
	}
	b.WriteString(footerStyle.Render("enter study · m multiple choice · f fill in · r redo · t stats · q quit"))
	return b.String()
}

func (m *Model) header() string {
	label := string(m.category)
	if m.mode == model.ModeRedo {
		label = "redo"
	}
	return titleStyle.Render(fmt.Sprintf("%s · %s", label, m.mode))
}

func (m *Model) card(item model.Item, back string) string {
	width := maxInt(10, m.contentWidth()-8)
	text := answerStyle.Render(wrapText(item.Prompt, width))
	if back != "" {
		text += "\n\n" + back
	}
	return cardStyle.Width(width).Render(text)
}

func (m *Model) viewCard() string {
	st := m.engine.Snapshot()
	item, ok := st.Current()
	if !ok {
		return ""
	}
	back := pendingStyle.Render("space to flip")
	keys := "space flip · esc menu"
	if st.Flipped || st.Scored {
		back = wrapText(item.Answer, maxInt(10, m.contentWidth()-8))
		keys = "y knew it · n missed it · esc menu"
	}
	if st.Scored {
		back += "\n\n" + feedback(st.LastCorrect)
		keys = ""
	}
	return strings.Join([]string{m.header(), m.card(item, back), m.renderFooter(), footerStyle.Render(keys)}, "\n\n")
}

func (m *Model) viewChoice() string {
	st := m.engine.Snapshot()
	item, ok := st.Current()
	if !ok {
		return ""
	}
	selected, locked := m.choice.Selected()
	var opts strings.Builder
	for i, opt := range m.choice.Options() {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		switch {
		case locked && opt == item.Answer:
			line = correctStyle.Render(line)
		case locked && opt == selected:
			line = incorrectStyle.Render(line)
		}
		opts.WriteString(line)
		opts.WriteString("\n")
	}
	parts := []string{m.header(), m.card(item, ""), strings.TrimRight(opts.String(), "\n")}
	if locked {
		parts = append(parts, feedback(selected == item.Answer))
	}
	parts = append(parts, m.renderFooter(), footerStyle.Render("1-9 choose · esc menu"))
	return strings.Join(parts, "\n\n")
}

func (m *Model) viewBlank() string {
	st := m.engine.Snapshot()
	item, ok := st.Current()
	if !ok {
		return ""
	}
	parts := []string{m.header(), m.card(item, ""), m.input.View()}
	if correct, shown := m.blank.Result(); shown {
		diff := wrapStyledRunes(buildStyledRunes([]rune(item.Answer), []rune(strings.TrimSpace(m.input.Value()))), m.contentWidth())
		parts = append(parts, feedback(correct)+"  "+diff)
	}
	keys := "enter submit · esc menu"
	if !m.blank.CanSubmit() {
		keys = "esc menu"
	}
	parts = append(parts, m.renderFooter(), footerStyle.Render(keys))
	return strings.Join(parts, "\n\n")
}

func (m *Model) viewSummary() string {
	tally := model.Tally{}
	if m.summary != nil {
		tally = m.summary.Tally
	}
	if m.quizTally != nil {
		tally = *m.quizTally
	}
	title := "Session complete"
	if m.mode == model.ModeRedo {
		title = "Redo complete"
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		correctStyle.Render(fmt.Sprintf("Correct: %d", tally.Correct)),
		incorrectStyle.Render(fmt.Sprintf("Incorrect: %d", tally.Incorrect)),
		fmt.Sprintf("Accuracy: %d%%", tally.Accuracy()),
	}
	keys := []string{}
	if m.mode == model.ModeRedo {
		remaining := m.deps.Missed.Len()
		lines = append(lines, fmt.Sprintf("Remaining missed: %d", remaining))
		if remaining > 0 {
			keys = append(keys, "c continue redo")
		}
	} else {
		keys = append(keys, "r retry")
		if len(m.engine.Snapshot().Missed) > 0 {
			keys = append(keys, "d redo missed")
		}
	}
	if m.deps.Missed.HasItems() {
		keys = append(keys, "x clear all wrong cards")
	}
	keys = append(keys, "esc menu", "q quit")
	return strings.Join(lines, "\n") + "\n\n" + footerStyle.Render(strings.Join(keys, " · "))
}

func (m *Model) viewStats() string {
	parts := []string{titleStyle.Render("Stats"), m.statsTable.View()}
	parts = append(parts, m.statsLines...)
	parts = append(parts, footerStyle.Render("esc menu · q quit"))
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderFooter() string {
	if m.engine == nil {
		return ""
	}
	st := m.engine.Snapshot()
	if len(st.Deck) == 0 {
		return ""
	}
	segments := []string{
		fmt.Sprintf("Card %d/%d", minInt(st.Position+1, len(st.Deck)), len(st.Deck)),
		fmt.Sprintf("Correct %d · Incorrect %d", st.Tally.Correct, st.Tally.Incorrect),
	}
	if n := m.deps.Missed.Len(); n > 0 {
		segments = append(segments, fmt.Sprintf("Missed queue %d", n))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func feedback(correct bool) string {
	if correct {
		return correctStyle.Render("Correct!")
	}
	return incorrectStyle.Render("Incorrect")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
