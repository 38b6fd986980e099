package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ctrlab/internal/stability"
)

var (
	header  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// Verdict renders a stability classification with its conventional color.
func Verdict(c stability.Class) string {
	switch c {
	case stability.Stable:
		return green.Render(c.String())
	case stability.Marginal:
		return yellow.Render(c.String())
	default:
		return red.Render(c.String())
	}
}

// Header renders a section title.
func Header(s string) string { return header.Render(s) }

// Dim renders secondary text.
func Dim(s string) string { return dim.Render(s) }

// Accent renders a highlighted value.
func Accent(s string) string { return cyan.Render(s) }
