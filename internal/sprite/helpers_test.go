package sprite

import (
	"image"
	"image/color"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 220, G: 30, B: 30, A: 255}
)

// newSheet returns a w x h opaque image filled with bg.
func newSheet(w, h int, bg color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRect(img, image.Rect(0, 0, w, h), bg)
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// transparentMask returns an image whose foreground is exactly the given
// rectangles, everything else fully transparent.
func transparentMask(w, h int, rects ...image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, r := range rects {
		fillRect(img, r, black)
	}
	return img
}

func countTransparent(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0 {
			n++
		}
	}
	return n
}
