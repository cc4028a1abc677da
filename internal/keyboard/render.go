package keyboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyBase      = lipgloss.NewStyle().Padding(0, 1).MarginRight(1)
	keyDefault   = keyBase.Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238"))
	keyActive    = keyBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("#0EA5E9")).Bold(true)
	keyCorrect   = keyBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("#22C55E"))
	keyIncorrect = keyBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("#EF4444"))
)

// Render draws layout with each key styled by its status.
func Render(layout Layout, sig Signal) string {
	rendered := make([]string, 0, len(layout.Rows()))
	for _, row := range layout.Rows() {
		keys := make([]string, 0, len(row))
		for _, label := range row {
			keys = append(keys, styleFor(StatusFor(label, sig)).Render(caption(label)))
		}
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, keys...))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rendered...)
}

func caption(label string) string {
	switch label {
	case KeySpace:
		return strings.Repeat(" ", 14) + "␣" + strings.Repeat(" ", 14)
	case KeyBackspace:
		return "⌫"
	case KeyEnter:
		return "⏎ Enter"
	case KeyShift:
		return "⇧"
	}
	return label
}

func styleFor(s Status) lipgloss.Style {
	switch s {
	case StatusActive:
		return keyActive
	case StatusCorrect:
		return keyCorrect
	case StatusIncorrect:
		return keyIncorrect
	default:
		return keyDefault
	}
}
