// Package render draws plans and generated configs for the terminal.
package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the styles used for terminal output. Colours degrade to plain
// text when the writer is not a terminal.
type Styles struct {
	Header  lipgloss.Style
	Test    lipgloss.Style
	Skip    lipgloss.Style
	Warning lipgloss.Style
	Subtle  lipgloss.Style
	URL     lipgloss.Style
}

// NewStyles returns [Styles] bound to the colour profile of w.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)

	return &Styles{
		Header:  r.NewStyle().Bold(true).Underline(true),
		Test:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#00D787"}),
		Skip:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF5F00", Dark: "#FFAF5F"}),
		Warning: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}).Bold(true),
		Subtle:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}),
		URL:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}),
	}
}
