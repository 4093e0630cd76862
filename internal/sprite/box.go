package sprite

import (
	"fmt"
	"image"
)

// Box is an axis-aligned bounding box of one detected blob, in pixel
// coordinates relative to the source image's bounds origin.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (b Box) Area() int {
	return b.Width * b.Height
}

// Rect converts the box to an image.Rectangle anchored at origin.
func (b Box) Rect(origin image.Point) image.Rectangle {
	return image.Rect(origin.X+b.X, origin.Y+b.Y, origin.X+b.X+b.Width, origin.Y+b.Y+b.Height)
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", b.Width, b.Height, b.X, b.Y)
}
