// Package report renders suite results as Markdown and writes report files.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cfgprobe/internal/suite"
	"cfgprobe/internal/trial"
)

// RenderMarkdown renders results as a Markdown document. It has no side
// effects and the same results always render the same text.
func RenderMarkdown(results suite.Results) string {
	var b strings.Builder
	family := strings.ToUpper(string(results.Family))
	fmt.Fprintf(&b, "# CFG %s Report\n\n", family)
	fmt.Fprintf(&b, "- Run: `%s`\n", results.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", formatTime(results.StartedAt))
	fmt.Fprintf(&b, "- Finished: %s\n", formatTime(results.FinishedAt))
	fmt.Fprintf(&b, "- Models: %s\n", escapeCell(strings.Join(results.Models, ", ")))
	fmt.Fprintf(&b, "- Trials: %d\n\n", len(results.Trials))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Model | Trials | Parsed | Passed | Checked | Pass rate (%) | Tokens in | Tokens out | Latency (s) |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	rows := append(append([]suite.ModelSummary(nil), results.Summary.Models...), results.Summary.Total)
	for _, s := range rows {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %s | %d | %d | %s |\n",
			escapeCell(s.Model), s.Trials, s.Parsed, s.Passed, s.Checked,
			formatPassRate(s.PassRate()), s.TokensIn, s.TokensOut, seconds(s.Latency))
	}

	outcome := "Value"
	if results.Family == trial.FamilySQL {
		outcome = "Exec"
	}
	b.WriteString("\n## Trials\n\n")
	fmt.Fprintf(&b, "| # | Model | Prompt | Candidate | Parsed | %s | Expected | Check | Elapsed (s) |\n", outcome)
	b.WriteString("|---:|---|---|---|---|---|---:|---|---:|\n")
	for i, tr := range results.Trials {
		model := tr.RequestedModel
		if tr.Model != "" && tr.Model != model {
			model += " (" + tr.Model + ")"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			i+1,
			escapeCell(model),
			escapeCell(tr.Prompt),
			codeCell(tr.Candidate),
			tr.ParsedLabel(),
			escapeCell(tr.OutcomeLabel()),
			tr.ExpectedLabel(),
			tr.CheckLabel(),
			tr.ElapsedSeconds(),
		)
	}
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64)
}
