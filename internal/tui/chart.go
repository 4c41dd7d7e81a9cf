package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/task/domain"
)

// RenderChart draws one horizontal bar per status, scaled to the largest count.
func RenderChart(c domain.StatusCounts, width int) string {
	barMax := width - 30
	if barMax < 10 {
		barMax = 10
	}
	rows := []struct {
		status domain.TaskStatus
		n      int64
	}{
		{domain.TaskStatusPending, c.Pending},
		{domain.TaskStatusInProgress, c.InProgress},
		{domain.TaskStatusCompleted, c.Completed},
	}
	var largest int64
	for _, r := range rows {
		largest = max(largest, r.n)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks by status"))
	b.WriteString("\n\n")
	for _, r := range rows {
		length := 0
		if largest > 0 {
			length = int(r.n * int64(barMax) / largest)
		}
		if r.n > 0 && length == 0 {
			length = 1
		}
		bar := lipgloss.NewStyle().Foreground(statusColor(r.status)).Render(strings.Repeat("█", length))
		pct := 0.0
		if c.Total > 0 {
			pct = float64(r.n) * 100 / float64(c.Total)
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-12s", r.status.Label())),
			bar,
			mutedStyle.Render(fmt.Sprintf("%d (%.0f%%)", r.n, pct)))
	}
	fmt.Fprintf(&b, "\n%s", labelStyle.Render(fmt.Sprintf("Total: %d", c.Total)))
	return b.String()
}
