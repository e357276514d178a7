// Package ui renders the CLI's tabular output.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Table is a titled grid of left-aligned columns. Widths are measured in
// terminal cells, so wide runes line up.
type Table struct {
	Title   string
	Headers []string
	// Styled enables colours and bold headers.
	Styled bool
	// StatusColumn is the index of a column whose cells are coloured by
	// StatusStyle, or -1.
	StatusColumn int
	// MaxCell truncates longer cells with "..."; 0 disables truncation.
	MaxCell int

	rows [][]string
}

func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers, StatusColumn: -1}
}

// Row appends one row. Missing cells render empty; extra cells are dropped.
func (t *Table) Row(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the table followed by a newline. Lines carry no trailing
// spaces.
func (t *Table) Render() string {
	widths := make([]int, len(t.Headers))
	cell := func(s string) string {
		return Truncate(s, t.MaxCell)
	}
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(c)))
		}
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	headerStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.render(titleStyle, t.Title))
		b.WriteString("\n")
	}
	t.line(&b, t.Headers, widths, func(int, string) lipgloss.Style { return headerStyle })
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cell(c)
		}
		t.line(&b, cells, widths, func(col int, s string) lipgloss.Style {
			if col == t.StatusColumn {
				return StatusStyle(s)
			}
			return lipgloss.NewStyle()
		})
	}
	return b.String()
}

func (t *Table) line(b *strings.Builder, cells []string, widths []int, style func(int, string) lipgloss.Style) {
	var sb strings.Builder
	sb.WriteString(" ")
	for i, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(t.render(style(i, c), c))
		if i < len(cells)-1 {
			sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(c)+1))
		}
	}
	b.WriteString(strings.TrimRight(sb.String(), " "))
	b.WriteString("\n")
}

func (t *Table) render(style lipgloss.Style, s string) string {
	if !t.Styled || s == "" {
		return s
	}
	return style.Render(s)
}

// StatusStyle colours a status or severity word.
func StatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "ok", "hit", "stable":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error", "changed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "warning", "miss":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "info":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

// Truncate shortens value to width terminal cells, ending in "..." when
// there is room for it.
func Truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
