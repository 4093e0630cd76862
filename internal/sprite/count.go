package sprite

import (
	"cmp"
	"slices"
)

// DefaultFrameCount is the number of frames a sheet is normalized to.
const DefaultFrameCount = 12

// NormalizeCount returns exactly target boxes.
//
// Too few boxes are padded by cycling through the input from index 0; the
// input stays a prefix of the result. Too many boxes are cut down to the
// target largest by area, ties keeping scan order, returned largest first.
// boxes must not be empty.
func NormalizeCount(boxes []Box, target int) []Box {
	if len(boxes) == 0 {
		panic("sprite: NormalizeCount called with no boxes")
	}
	if target <= 0 {
		return []Box{}
	}

	n := len(boxes)
	switch {
	case n == target:
		return slices.Clone(boxes)

	case n < target:
		out := make([]Box, target)
		for i := range out {
			out[i] = boxes[i%n]
		}
		return out

	default:
		byArea := slices.Clone(boxes)
		slices.SortStableFunc(byArea, func(a, b Box) int {
			return cmp.Compare(b.Area(), a.Area())
		})
		return byArea[:target:target]
	}
}
