package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/task/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
)

func statusColor(s domain.TaskStatus) lipgloss.Color {
	switch s {
	case domain.TaskStatusInProgress:
		return lipgloss.Color(ColorInProgress)
	case domain.TaskStatusCompleted:
		return lipgloss.Color(ColorCompleted)
	}
	return lipgloss.Color(ColorPending)
}

func priorityColor(p domain.Priority) lipgloss.Color {
	switch p {
	case domain.PriorityHigh:
		return lipgloss.Color(ColorError)
	case domain.PriorityLow:
		return lipgloss.Color(ColorSecondaryText)
	}
	return lipgloss.Color(ColorPending)
}

// newInput applies the theme to a text input.
func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Width = 50
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	return in
}
