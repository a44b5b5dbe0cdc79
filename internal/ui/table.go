package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Column defines a table column. Right-aligned columns suit amounts.
type Column struct {
	Title string
	Width int
	Right bool
}

// Row is a slice of cell values.
type Row []string

// Table renders a fixed-width table.
type Table struct {
	Columns []Column
	Rows    []Row
}

func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols}
}

func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

// Render pads plain cell text to the column width before styling, so
// styled cells never wrap.
func (t *Table) Render() string {
	var sb strings.Builder

	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)

	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		parts[i] = header.Render(fit(c.Title, c.Width, c.Right))
	}
	sb.WriteString(strings.Join(parts, " ") + "\n")

	for i, c := range t.Columns {
		parts[i] = StyleMeta.Render(strings.Repeat("─", c.Width))
	}
	sb.WriteString(strings.Join(parts, " ") + "\n")

	for _, row := range t.Rows {
		for j, c := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			parts[j] = cell.Render(fit(val, c.Width, c.Right))
		}
		sb.WriteString(strings.Join(parts, " ") + "\n")
	}
	return sb.String()
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int, right bool) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		sb.WriteString("  " + StyleMeta.Render(fmt.Sprintf("%-18s", p[0]+":")) + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimSuffix(sb.String(), "\n"))
}
