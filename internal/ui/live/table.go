package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// defaultColumns returns the trial table columns for a standard width.
func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth gives spare width to the prompt and candidate columns.
func columnsForWidth(width int) []table.Column {
	const fixed = 14 + 4 + 22 + 10 + 8
	flex := max(width-fixed-12, 20)
	prompt := flex / 2
	candidate := flex - prompt
	return []table.Column{
		{Title: "Model", Width: 14},
		{Title: "#", Width: 4},
		{Title: "Prompt", Width: prompt},
		{Title: "Candidate", Width: candidate},
		{Title: "Status", Width: 22},
		{Title: "Result", Width: 10},
		{Title: "Elapsed", Width: 8},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			row.Model,
			formatIndex(row.CaseIndex),
			truncate(row.Prompt, 60),
			truncate(row.Candidate, 60),
			formatStatus(row, noColor),
			row.Detail,
			formatRowDuration(row, now),
		})
	}
	return rows
}
