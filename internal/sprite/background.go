package sprite

import (
	"image"
	"math"
)

// RemoveBackground returns a copy of img in which every pixel whose RGB
// distance to the top-left pixel is below threshold is fully transparent.
// Other pixels, including their alpha, are copied unchanged.
// The result is anchored at (0,0); img is not modified.
func RemoveBackground(img *image.NRGBA, threshold float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	for y := 0; y < h; y++ {
		srcOff := img.PixOffset(b.Min.X, b.Min.Y+y)
		dstOff := y * out.Stride
		copy(out.Pix[dstOff:dstOff+w*4], img.Pix[srcOff:srcOff+w*4])
	}

	// Reference color is sampled from the top-left corner only.
	r0 := float64(out.Pix[0])
	g0 := float64(out.Pix[1])
	b0 := float64(out.Pix[2])

	for i := 0; i < len(out.Pix); i += 4 {
		dr := float64(out.Pix[i]) - r0
		dg := float64(out.Pix[i+1]) - g0
		db := float64(out.Pix[i+2]) - b0
		if math.Sqrt(dr*dr+dg*dg+db*db) < threshold {
			out.Pix[i+3] = 0
		}
	}
	return out
}
