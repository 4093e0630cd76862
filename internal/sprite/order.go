package sprite

import (
	"cmp"
	"slices"
)

// DefaultRowHeight is the y-band height used to group boxes into rows.
const DefaultRowHeight = 30

// SortReadingOrder returns boxes ordered top-to-bottom by row band
// (Y / rowHeight), then left-to-right by X. Equal keys keep input order.
// A rowHeight below 1 is treated as 1.
func SortReadingOrder(boxes []Box, rowHeight int) []Box {
	if rowHeight < 1 {
		rowHeight = 1
	}
	out := slices.Clone(boxes)
	slices.SortStableFunc(out, func(a, b Box) int {
		return compareReading(a, b, rowHeight)
	})
	return out
}

// RowIndex returns the row band a box falls into.
func RowIndex(b Box, rowHeight int) int {
	if rowHeight < 1 {
		rowHeight = 1
	}
	return b.Y / rowHeight
}

func compareReading(a, b Box, rowHeight int) int {
	if c := cmp.Compare(RowIndex(a, rowHeight), RowIndex(b, rowHeight)); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}
