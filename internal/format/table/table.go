package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Format returns the rows padded according to the widest entry in each
// column. Widths are measured in terminal cells so wide runes line up.
// Trailing padding on the last column is dropped.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := Widths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			pad := widths[c] - CellWidth(cell)
			if c < len(alignments) && alignments[c] == AlignRight {
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

// Widths reports the widest cell of every column.
func Widths(rows [][]string) []int {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for c, cell := range row {
			if w := CellWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

// CellWidth is the number of terminal columns text occupies.
func CellWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Pair lays out a left and right column in exactly width cells, with at
// least one space between them. The left side is cut when both do not fit.
func Pair(left, right string, width int) string {
	rw := CellWidth(right)
	if right == "" {
		return runewidth.FillRight(runewidth.Truncate(left, width, "…"), width)
	}
	avail := width - rw - 1
	if avail < 1 {
		return runewidth.FillRight(runewidth.Truncate(left, width, "…"), width)
	}
	left = runewidth.Truncate(left, avail, "…")
	var b strings.Builder
	b.WriteString(left)
	writeSpaces(&b, width-CellWidth(left)-rw)
	b.WriteString(right)
	return b.String()
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
