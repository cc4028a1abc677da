// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/velotype/internal/history"
	"github.com/verte-zerg/velotype/internal/keyboard"
	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/session"
	"github.com/verte-zerg/velotype/internal/stats"
	"github.com/verte-zerg/velotype/internal/textgen"
)

// Options wires the typing UI to its collaborators.
type Options struct {
	Config   model.Config
	Session  *session.Session
	Provider session.Provider
	History  *history.Store
	// Local receives focus keys when Config.FocusMissed is set; may be nil.
	Local  *textgen.Local
	Feed   LiveFeed
	Logger *zap.SugaredLogger
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctx        context.Context
	config     model.Config
	difficulty model.Difficulty
	layout     keyboard.Layout
	sess       *session.Session
	provider   session.Provider
	history    *history.Store
	local      *textgen.Local
	feed       LiveFeed
	logger     *zap.SugaredLogger

	width  int
	height int

	live model.TestStats

	lastWPM int
	lastAcc int
	hasLast bool
	allWPM  float64
	allAcc  float64

	focusNotice string
}

type textReadyMsg struct {
	token uint64
	text  string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0EA5E9")).Bold(true)
	statLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	statValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	overlayStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#22C55E")).
				Padding(1, 4).
				Align(lipgloss.Center)
)

// NewModel constructs a typing TUI model.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	difficulty := opts.Config.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	layout, err := keyboard.ParseLayout(opts.Config.Layout)
	if err != nil {
		layout = keyboard.QWERTY
	}
	m := &Model{
		ctx:        ctx,
		config:     opts.Config,
		difficulty: difficulty,
		layout:     layout,
		sess:       opts.Session,
		provider:   opts.Provider,
		history:    opts.History,
		local:      opts.Local,
		feed:       opts.Feed,
		logger:     logger,
		live:       model.EmptyStats(),
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.begin(), waitForLive(m.feed))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case textReadyMsg:
		if !m.sess.Arm(msg.token, msg.text) {
			m.logger.Debugw("ignoring superseded text", "token", msg.token)
		}
		return m, nil
	case liveStatsMsg:
		if m.sess.Phase() == session.PhaseRunning {
			m.live = model.TestStats(msg)
		}
		return m, waitForLive(m.feed)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	phase := m.sess.Phase()
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyCtrlR:
		return m.begin()
	case tea.KeyCtrlD:
		if phase == session.PhaseRunning {
			return nil
		}
		m.difficulty = m.difficulty.Next()
		return m.begin()
	case tea.KeyCtrlL:
		if phase != session.PhaseRunning {
			m.layout = m.layout.Next()
		}
		return nil
	}

	if phase == session.PhaseFinished {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyTab {
			return m.begin()
		}
		return nil
	}
	if !phase.AcceptsInput() {
		return nil
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		m.sess.Backspace()
	case tea.KeySpace:
		m.sess.Type(' ')
	case tea.KeyEnter:
		m.sess.Type('\n')
	case tea.KeyTab:
		m.sess.Type(m.indentRunes()...)
	case tea.KeyRunes:
		m.sess.Type(msg.Runes...)
	default:
		return nil
	}
	if m.sess.Phase() == session.PhaseFinished {
		m.onFinished()
	}
	return nil
}

// indentRunes returns a tab when the target expects one, otherwise the run of
// spaces expected at the cursor, or one space.
func (m *Model) indentRunes() []rune {
	target := []rune(m.sess.Target())
	pos := len([]rune(m.sess.Input()))
	if pos < len(target) && target[pos] == '\t' {
		return []rune{'\t'}
	}
	var out []rune
	for i := pos; i < len(target) && target[i] == ' '; i++ {
		out = append(out, ' ')
	}
	if len(out) == 0 {
		out = []rune{' '}
	}
	return out
}

// begin starts a new session and requests its text asynchronously.
func (m *Model) begin() tea.Cmd {
	m.refreshFocus()
	genCtx, token := m.sess.Begin(m.ctx, m.difficulty)
	m.feed.Drain()
	m.live = model.EmptyStats()
	provider := m.provider
	difficulty := m.difficulty
	return func() tea.Msg {
		return textReadyMsg{token: token, text: provider.Generate(genCtx, difficulty)}
	}
}

func (m *Model) refreshFocus() {
	if !m.config.FocusMissed || m.local == nil || m.history == nil {
		return
	}
	totals := m.history.RecentMissedKeyTotals(m.ctx, m.config.RecentWindow)
	if len(totals) == 0 {
		m.focusNotice = "no missed keys recorded yet; using normal text"
		m.local.SetFocus(nil, 0)
		return
	}
	keys := stats.SelectFocusKeys(totals, m.config.FocusTop)
	m.local.SetFocus(keys, m.config.FocusFactor)
	m.focusNotice = "focus: " + focusLabel(keys)
}

func focusLabel(keys map[rune]struct{}) string {
	labels := make([]string, 0, len(keys))
	for r := range keys {
		labels = append(labels, string(r))
	}
	sort.Strings(labels)
	return strings.Join(labels, " ")
}

func (m *Model) onFinished() {
	item, ok := m.sess.Result()
	if !ok {
		return
	}
	m.live = item.TestStats
	m.lastWPM = item.WPM
	m.lastAcc = item.Accuracy
	m.hasLast = true
	m.loadFooterStats()
}

func (m *Model) loadFooterStats() {
	if m.history == nil {
		return
	}
	items := m.history.Items()
	if len(items) == 0 {
		return
	}
	last := items[len(items)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	summary := stats.Summarize(items)
	m.allWPM = summary.AvgWPM
	m.allAcc = summary.AvgAccuracy
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.width * 70 / 100
	if contentWidth < 20 {
		contentWidth = max(m.width, 20)
	}

	sections := []string{m.renderHeader(), m.renderStatsBar(), ""}
	switch m.sess.Phase() {
	case session.PhaseIdle, session.PhaseGenerating:
		sections = append(sections, pendingStyle.Render("Generating text…"))
	case session.PhaseFinished:
		sections = append(sections, m.renderOverlay())
	default:
		sections = append(sections, lipgloss.NewStyle().Width(contentWidth).Render(m.renderText(contentWidth)))
	}
	sections = append(sections, "", keyboard.Render(m.layout, m.keySignal()))
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)

	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	return headerStyle.Render("velotype") + footerStyle.Render(fmt.Sprintf("  %s · %s", m.difficulty, m.layout))
}

func (m *Model) renderStatsBar() string {
	st := m.live
	items := []struct{ label, value string }{
		{"WPM", fmt.Sprintf("%d", st.WPM)},
		{"ACC", fmt.Sprintf("%d%%", st.Accuracy)},
		{"TIME", fmt.Sprintf("%ds", int(st.TimeElapsed))},
		{"RAW", fmt.Sprintf("%d", st.RawWPM)},
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, statLabelStyle.Render(it.label+" ")+statValueStyle.Render(it.value))
	}
	return strings.Join(parts, "   ")
}

func (m *Model) renderText(width int) string {
	target := []rune(m.sess.Target())
	input := []rune(m.sess.Input())
	cursorIndex := -1
	if len(input) < len(target) {
		cursorIndex = len(input)
	}
	return wrapStyledRunes(buildStyledRunes(target, input, cursorIndex), width)
}

func (m *Model) renderOverlay() string {
	item, ok := m.sess.Result()
	if !ok {
		return ""
	}
	body := strings.Join([]string{
		headerStyle.Render("Test complete!"),
		"",
		fmt.Sprintf("%s %s   %s %s",
			statLabelStyle.Render("WPM"), statValueStyle.Render(fmt.Sprintf("%d", item.WPM)),
			statLabelStyle.Render("Accuracy"), statValueStyle.Render(fmt.Sprintf("%d%%", item.Accuracy))),
		footerStyle.Render(fmt.Sprintf("raw %d · errors %d · %.1fs", item.RawWPM, item.Errors, item.TimeElapsed)),
		"",
		footerStyle.Render("enter: new test"),
	}, "\n")
	return overlayStyle.Render(body)
}

func (m *Model) keySignal() keyboard.Signal {
	var sig keyboard.Signal
	if exp := m.sess.ExpectedNext(); exp.Valid {
		sig.ActiveEnter = exp.Enter
		sig.Active = exp.Rune
		sig.HasActive = !exp.Enter
	}
	if press := m.sess.LastPress(); press.Valid {
		sig.Pressed = press.Rune
		sig.HasPressed = true
		sig.PressedCorrect = press.Correct
	}
	return sig
}

func (m *Model) renderFooter() string {
	typed, total := m.sess.Progress()
	progress := 0
	if total > 0 {
		progress = typed * 100 / total
	}
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc))
	if m.focusNotice != "" {
		segments = append(segments, m.focusNotice)
	}
	segments = append(segments, "^R new · ^D difficulty · ^L layout · esc quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}
