package terminal

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

var (
	primary     = lipgloss.Color("#2563eb")
	muted       = lipgloss.Color("#6b7280")
	success     = lipgloss.Color("#16a34a")
	destructive = lipgloss.Color("#dc2626")
	warning     = lipgloss.Color("#d97706")
)

// Styles holds the lipgloss styles shared by the verification views.
type Styles struct {
	Frame       lipgloss.Style
	Title       lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Cell        lipgloss.Style
	FocusedCell lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Warning     lipgloss.Style
	Spinner     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 3),

		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Cell: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(muted).
			Width(3).
			Align(lipgloss.Center),

		FocusedCell: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(primary).
			Width(3).
			Align(lipgloss.Center),

		Success: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(destructive),

		Warning: lipgloss.NewStyle().
			Foreground(warning),

		Spinner: lipgloss.NewStyle().
			Foreground(primary),
	}
}

// renderCells draws the digit row. The focused cell is highlighted unless
// the row is disabled.
func (s Styles) renderCells(cells []string, focus int, disabled bool) string {
	boxes := make([]string, len(cells))
	for i, c := range cells {
		style := s.Cell
		if i == focus && !disabled {
			style = s.FocusedCell
		}
		if c == "" {
			c = " "
		}
		boxes[i] = style.Render(c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (s Styles) lines(parts ...string) string {
	kept := lo.Filter(parts, func(p string, _ int) bool {
		return strings.TrimSpace(p) != ""
	})
	return strings.Join(kept, "\n\n")
}

// styled renders s, leaving empty text empty so lines can drop it.
func styled(st lipgloss.Style, s string) string {
	if s == "" {
		return ""
	}
	return st.Render(s)
}
