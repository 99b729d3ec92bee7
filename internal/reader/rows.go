package reader

import (
	"math"
	"sort"
	"strings"
)

// DefaultRowTolerance is the vertical distance, in points, under which two
// tokens are considered part of the same visual row.
const DefaultRowTolerance = 2.0

// wordGapRatio is the horizontal gap, relative to font size, that separates
// two glyphs into different words.
const wordGapRatio = 0.2

// GroupRows clusters words into visual rows by vertical proximity, top of the
// page first, each row ordered left to right. The input is not modified.
func GroupRows(words []Word, tolerance float64) [][]Word {
	if len(words) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultRowTolerance
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]Word
	var current []Word
	var anchor float64
	for _, w := range sorted {
		if len(current) > 0 && math.Abs(anchor-w.Y) > tolerance {
			rows = append(rows, current)
			current = nil
		}
		if len(current) == 0 {
			anchor = w.Y
		} else {
			// running mean keeps slightly skewed baselines together
			anchor = (anchor*float64(len(current)) + w.Y) / float64(len(current)+1)
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// MergeGlyphs joins the glyph runs of one row into words. Runs whose gap is
// wider than a fraction of the font size, or that are blank, start a new word.
func MergeGlyphs(row []Word) []Word {
	var out []Word
	var cur *Word
	for _, g := range row {
		if strings.TrimSpace(g.Text) == "" {
			cur = nil
			continue
		}
		if cur != nil {
			size := cur.Size
			if size <= 0 {
				size = 10
			}
			gap := g.X - (cur.X + cur.W)
			if gap <= size*wordGapRatio {
				cur.Text += g.Text
				cur.W = g.X + g.W - cur.X
				continue
			}
		}
		out = append(out, g)
		cur = &out[len(out)-1]
	}
	return out
}

// RowsText renders rows as newline-separated lines of space-separated words.
func RowsText(rows [][]Word) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, w := range row {
			if t := strings.TrimSpace(w.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}
