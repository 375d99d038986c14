package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Column configures one column. Max caps the display width; zero means
// unbounded.
type Column struct {
	Align Alignment
	Max   int
}

const ellipsis = "…"

// Format returns the rows padded according to the widest entry in each
// column. Widths are measured in terminal cells, ignoring ANSI styling, and
// the last column is never padded.
func Format(rows [][]string, columns []Column) []string {
	if len(rows) == 0 {
		return nil
	}
	colCount := len(rows[0])
	cells := make([][]string, len(rows))
	widths := make([]int, colCount)
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for c, cell := range row {
			if c < len(columns) && columns[c].Max > 0 && ansi.StringWidth(cell) > columns[c].Max {
				cell = ansi.Truncate(cell, columns[c].Max, ellipsis)
			}
			cells[i][c] = cell
			if c < colCount && ansi.StringWidth(cell) > widths[c] {
				widths[c] = ansi.StringWidth(cell)
			}
		}
	}
	out := make([]string, len(rows))
	for i, row := range cells {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			pad := 0
			if c < colCount {
				pad = widths[c] - ansi.StringWidth(cell)
			}
			if c < len(columns) && columns[c].Align == AlignRight {
				writeSpaces(&b, pad)
				b.WriteString(cell)
				continue
			}
			b.WriteString(cell)
			if c < len(row)-1 {
				writeSpaces(&b, pad)
			}
		}
		out[i] = b.String()
	}
	return out
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
