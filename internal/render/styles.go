package render

import "github.com/charmbracelet/lipgloss"

type palette struct {
	enabled bool
}

func (p palette) style(color string, bold bool) lipgloss.Style {
	if !p.enabled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(bold)
}

func (p palette) title(text string) string  { return p.style("39", true).Render(text) }
func (p palette) label(text string) string  { return p.style("245", false).Render(text) }
func (p palette) good(text string) string   { return p.style("42", true).Render(text) }
func (p palette) warn(text string) string   { return p.style("220", true).Render(text) }
func (p palette) bad(text string) string    { return p.style("196", true).Render(text) }
func (p palette) muted(text string) string  { return p.style("242", false).Render(text) }
func (p palette) accent(text string) string { return p.style("33", false).Render(text) }

func (p palette) border() lipgloss.Style {
	if !p.enabled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
}
