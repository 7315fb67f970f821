package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"cfgprobe/internal/suite"
)

// RenderSummary formats the per-trial table and per-model totals of a run.
func RenderSummary(results suite.Results, opts Options) string {
	p := palette{enabled: !opts.NoColor}
	outcome := "Value"
	if results.Family == "sql" {
		outcome = "Exec"
	}

	trials := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border()).
		Headers("#", "Model", "Prompt", "Candidate", "Parsed", outcome, "Expected", "Check", "Elapsed (s)")
	for i, tr := range results.Trials {
		trials.Row(
			strconv.Itoa(i+1),
			tr.Model,
			clip(tr.Prompt, 48),
			clip(tr.Candidate, 60),
			parsedCell(p, tr.Result),
			clip(tr.OutcomeLabel(), 40),
			tr.ExpectedLabel(),
			checkCell(p, tr.Result),
			tr.ElapsedSeconds(),
		)
	}

	models := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border()).
		Headers("Model", "Trials", "Parsed", "Passed", "Tokens in", "Tokens out", "Latency (s)")
	rows := append(append([]suite.ModelSummary(nil), results.Summary.Models...), results.Summary.Total)
	for _, s := range rows {
		models.Row(
			s.Model,
			strconv.Itoa(s.Trials),
			strconv.Itoa(s.Parsed),
			fmt.Sprintf("%d/%d", s.Passed, s.Checked),
			strconv.Itoa(s.TokensIn),
			strconv.Itoa(s.TokensOut),
			strconv.FormatFloat(s.Latency.Seconds(), 'f', 2, 64),
		)
	}

	var b strings.Builder
	b.WriteString(p.title(fmt.Sprintf("CFG %s suite", strings.ToUpper(string(results.Family)))))
	b.WriteString(" ")
	b.WriteString(p.muted("run " + results.RunID))
	b.WriteString("\n")
	b.WriteString(trials.Render())
	b.WriteString("\n")
	b.WriteString(models.Render())
	b.WriteString("\n")
	return b.String()
}

func clip(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
