package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// formatIndex formats a case index for display.
func formatIndex(index int) string {
	return "#" + pad2(index+1)
}

// pad2 left-pads a number to two digits when needed.
func pad2(value int) string {
	if value >= 10 {
		return fmtInt(value)
	}
	return "0" + fmtInt(value)
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// truncate flattens whitespace and clips text to limit runes.
func truncate(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}

// formatStatus renders the status column.
func formatStatus(row TrialRow, noColor bool) string {
	text := string(row.Status)
	if row.Status == StatusError && row.Error != "" {
		text = "error: " + truncate(row.Error, 30)
	}
	if noColor {
		return text
	}
	return statusStyle(row.Status).Render(text)
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row TrialRow, now time.Time) string {
	if row.Latency > 0 {
		return formatDuration(row.Latency)
	}
	if !row.FinishedAt.IsZero() && !row.StartedAt.IsZero() {
		return formatDuration(row.FinishedAt.Sub(row.StartedAt))
	}
	if !row.StartedAt.IsZero() {
		return formatDuration(now.Sub(row.StartedAt))
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}

// statusStyle selects a style for a given status.
func statusStyle(status TrialStatus) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case StatusPassed:
		color = lipgloss.Color("42")
	case StatusFailed:
		color = lipgloss.Color("220")
	case StatusRejected, StatusError:
		color = lipgloss.Color("196")
	case StatusRunning:
		color = lipgloss.Color("33")
	case StatusQueued:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
