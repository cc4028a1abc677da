// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/velotype/internal/history"
	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/stats"
)

const (
	tabOverview = iota
	tabProblemKeys
)

const (
	plotHeight = 10
	// recommendedDrill is suggested whenever a most-missed key exists.
	recommendedDrill = "Basic Home Row"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	missedKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	drillStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0EA5E9"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	history *history.Store
	cfg     model.StatsConfig

	report stats.Report

	tabs      []string
	activeTab int
	overview  viewport.Model
	keyTable  table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model over the sessions held by h.
func NewModel(h *history.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		history:  h,
		cfg:      cfg,
		tabs:     []string{"Overview", "Problem Keys"},
		overview: viewport.New(0, 0),
		keyTable: table.New(table.WithColumns(keyColumns()), table.WithHeight(1)),
	}
	m.keyTable.SetStyles(keyTableStyles())
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderOverview()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderOverview()
			return m, nil
		case "d":
			m.cfg.Difficulty = nextDifficultyFilter(m.cfg.Difficulty)
			m.refreshReport()
			return m, nil
		case "g", "home":
			if m.activeTab == tabProblemKeys {
				m.keyTable.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabProblemKeys {
				m.keyTable.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabProblemKeys {
			m.keyTable, cmd = m.keyTable.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Report returns the data currently on screen.
func (m *Model) Report() stats.Report {
	return m.report
}

func (m *Model) refreshReport() {
	var items []model.HistoryItem
	if m.history != nil {
		items = m.history.Items()
	}
	m.report = stats.BuildReport(items, m.cfg)
	m.keyTable.SetRows(keyRows(m.report.TopMissed))
	m.keyTable.GotoTop()
	m.renderOverview()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.keyTable.SetWidth(m.width)
	// The summary line under the table takes two rows.
	m.keyTable.SetHeight(max(bodyHeight-2, 2))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabProblemKeys {
		m.keyTable.Focus()
	} else {
		m.keyTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	difficulty := "any"
	if m.cfg.Difficulty != "" {
		difficulty = string(m.cfg.Difficulty)
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: difficulty=%s  since=%s  last=%s  window=%d", difficulty, since, last, max(m.cfg.CurveWindow, 1))
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Difficulty: d  Quit: q")
}

func (m *Model) renderBody() string {
	if m.activeTab == tabProblemKeys {
		return m.renderProblemKeys()
	}
	return m.overview.View()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.report.Summary.Sessions == 0 {
		m.overview.SetContent("No sessions found.")
		return
	}
	cards := renderSummaryCards(m.report.Summary, width)
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, m.report.Recent, m.cfg.CurveWindow, width, plotHeight, true); err != nil {
		m.overview.SetContent(cards + "\n\n" + fmt.Sprintf("Failed to render curves: %v", err))
		return
	}
	m.overview.SetContent(strings.TrimRight(cards+"\n\n"+buf.String(), "\n"))
}

func (m *Model) renderProblemKeys() string {
	if len(m.report.TopMissed) == 0 {
		return "No errors recorded yet!"
	}
	return tableMutedStyle.Render(m.keyTable.View()) + "\n\n" + renderMostMissed(m.report)
}

func renderMostMissed(report stats.Report) string {
	key := "None"
	if kc, ok := report.MostMissed(); ok {
		key = stats.KeyLabel(kc.Key)
	}
	return fmt.Sprintf("Most missed key: %s   Recommended drill: %s",
		missedKeyStyle.Render(key), drillStyle.Render(recommendedDrill))
}

func renderSummaryCards(s stats.Summary, width int) string {
	cards := []string{
		metricCard("Sessions", strconv.Itoa(s.Sessions)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", s.AvgWPM)),
		metricCard("Best WPM", strconv.Itoa(s.BestWPM)),
		metricCard("Avg Raw", fmt.Sprintf("%.1f", s.AvgRawWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", s.AvgAccuracy)),
		metricCard("Time", stats.FormatSeconds(s.TotalTime)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func keyColumns() []table.Column {
	return []table.Column{
		{Title: "Key", Width: 8},
		{Title: "Missed", Width: 7},
		{Title: "Share", Width: 7},
	}
}

func keyRows(top []model.KeyCount) []table.Row {
	total := 0
	for _, kc := range top {
		total += kc.Count
	}
	rows := make([]table.Row, 0, len(top))
	for _, kc := range top {
		share := 0.0
		if total > 0 {
			share = float64(kc.Count) / float64(total) * 100
		}
		rows = append(rows, table.Row{
			stats.KeyLabel(kc.Key),
			strconv.Itoa(kc.Count),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	return rows
}

func keyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// nextDifficultyFilter cycles any -> Easy -> ... -> Code Snippet -> any.
func nextDifficultyFilter(d model.Difficulty) model.Difficulty {
	if d == "" {
		return model.Difficulties[0]
	}
	if d == model.Difficulties[len(model.Difficulties)-1] {
		return ""
	}
	return d.Next()
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
