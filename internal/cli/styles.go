package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorHighlight = lipgloss.Color("#3B82F6")
)

// styles are bound to the output they render for, so piped output and test
// buffers get plain text.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	kind   lipgloss.Style
	cell   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(colorPrimary),
		header: r.NewStyle().Bold(true).Foreground(colorMuted).PaddingRight(1),
		kind:   r.NewStyle().Foreground(colorHighlight).PaddingRight(1),
		cell:   r.NewStyle().PaddingRight(1),
	}
}

// table returns a borderless table whose second column holds module kinds.
func (s styles) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.header
			case col == 1:
				return s.kind
			default:
				return s.cell
			}
		})
}
