package report

import (
	"fmt"
	"strings"
)

// formatPassRate returns a percentage string for report output.
func formatPassRate(rate float64) string {
	return fmt.Sprintf("%.2f", rate*100)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// escapeCell makes text safe inside a Markdown table cell.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

// codeCell renders s as inline code. Backticks inside s widen the fence.
func codeCell(s string) string {
	s = escapeCell(s)
	if s == "" {
		return ""
	}
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
