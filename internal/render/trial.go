package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"cfgprobe/internal/generate"
	"cfgprobe/internal/trial"
)

// maxPreviewRows bounds the query rows shown under a SQL trial.
const maxPreviewRows = 10

// RenderTrial formats a single trial as a labelled block followed by the
// tool calls the model made. SQL trials that executed also get a preview
// of the returned rows.
func RenderTrial(result trial.Result, opts Options) string {
	p := palette{enabled: !opts.NoColor}
	heading := "Math Expression"
	if result.Family == trial.FamilySQL {
		heading = "SQL Query"
	}

	outcomeLabel := "Value"
	if result.Family == trial.FamilySQL {
		outcomeLabel = "Exec"
	}
	fields := [][2]string{
		{"Model", result.Model},
		{"Prompt", result.Prompt},
		{"Candidate", orNone(result.Candidate)},
		{"Parsed", parsedCell(p, result)},
		{outcomeLabel, result.OutcomeLabel()},
		{"Expected", result.ExpectedLabel()},
		{"Check", checkCell(p, result)},
		{"Elapsed", result.ElapsedSeconds() + "s"},
	}
	if result.Usage != nil {
		fields = append(fields, [2]string{"Tokens", fmt.Sprintf("%d in / %d out", result.Usage.InputTokens, result.Usage.OutputTokens)})
	}
	if !result.Parse.Accepted() && result.Parse.Reason != "" {
		fields = append(fields, [2]string{"Reason", p.muted(result.Parse.Reason)})
	}

	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	var b strings.Builder
	b.WriteString(p.title(heading))
	b.WriteString("\n")
	for _, f := range fields {
		b.WriteString(p.label(fmt.Sprintf("%-*s", width, f[0])))
		b.WriteString("  ")
		b.WriteString(f[1])
		b.WriteString("\n")
	}
	if len(result.ToolCalls) > 0 {
		b.WriteString(renderToolCalls(p, result.ToolCalls))
		b.WriteString("\n")
	}
	if result.Exec != nil && result.Exec.OK() && len(result.Exec.Columns) > 0 {
		b.WriteString(renderRows(p, result.Exec.Columns, result.Exec.Rows))
		b.WriteString("\n")
	}
	return b.String()
}

func renderToolCalls(p palette, calls []generate.ToolCall) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border()).
		Headers("Tool", "Input", "Status")
	for _, call := range calls {
		status := call.Status
		if status == "" {
			status = "-"
		}
		t.Row(call.Name, strings.ReplaceAll(call.Input, "\n", " "), status)
	}
	return t.Render()
}

func renderRows(p palette, columns []string, rows [][]any) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border()).
		Headers(columns...)
	for i, row := range rows {
		if i == maxPreviewRows {
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		t.Row(cells...)
	}
	out := t.Render()
	if len(rows) > maxPreviewRows {
		out += "\n" + p.muted(fmt.Sprintf("... %d more rows", len(rows)-maxPreviewRows))
	}
	return out
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	if f, ok := v.(float64); ok {
		return trial.FormatNumber(f)
	}
	return fmt.Sprint(v)
}

func parsedCell(p palette, result trial.Result) string {
	if result.Parse.Accepted() {
		return p.good("yes")
	}
	return p.bad("no")
}

func checkCell(p palette, result trial.Result) string {
	label := result.CheckLabel()
	switch label {
	case "pass":
		return p.good(label)
	case "fail":
		return p.warn(label)
	}
	return label
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
