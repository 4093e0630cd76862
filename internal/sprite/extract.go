package sprite

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Defaults for ExtractOptions.
const (
	DefaultPadding = 1.2
	DefaultFill    = 0.9
)

// ErrDegenerateBox is returned when a box has no area or does not fit in the
// source image. The detector never produces one.
var ErrDegenerateBox = errors.New("sprite: degenerate box")

// ExtractOptions controls how blobs are fitted onto the shared canvas.
type ExtractOptions struct {
	// Padding multiplies the largest blob dimension to get the canvas size.
	Padding float64
	// Fill is the fraction of the canvas a blob's longer side may occupy.
	Fill float64
	// Kernel resamples the cropped blob. Nil means draw.CatmullRom.
	Kernel draw.Interpolator
}

// DefaultExtractOptions returns Padding 1.2, Fill 0.9, CatmullRom.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Padding: DefaultPadding,
		Fill:    DefaultFill,
		Kernel:  draw.CatmullRom,
	}
}

// CanvasSize returns ceil(padding * largest width or height among boxes).
func CanvasSize(boxes []Box, padding float64) int {
	maxDim := 0
	for _, b := range boxes {
		maxDim = max(maxDim, b.Width, b.Height)
	}
	return int(math.Ceil(padding * float64(maxDim)))
}

// ExtractFrames crops every box out of src and centers it, uniformly scaled,
// on its own transparent square canvas. All frames share the size returned
// by CanvasSize. Frame i corresponds to boxes[i].
func ExtractFrames(src *image.NRGBA, boxes []Box, opts ExtractOptions) ([]*image.NRGBA, error) {
	sb := src.Bounds()
	for i, b := range boxes {
		if b.Width < 1 || b.Height < 1 || b.X < 0 || b.Y < 0 ||
			b.X+b.Width > sb.Dx() || b.Y+b.Height > sb.Dy() {
			return nil, fmt.Errorf("%w: box %d %s in %dx%d image", ErrDegenerateBox, i, b, sb.Dx(), sb.Dy())
		}
	}

	kernel := opts.Kernel
	if kernel == nil {
		kernel = draw.CatmullRom
	}

	size := CanvasSize(boxes, opts.Padding)
	frames := make([]*image.NRGBA, 0, len(boxes))
	for _, b := range boxes {
		crop := cropBox(src, b)
		frames = append(frames, fitOnCanvas(crop, size, opts.Fill, kernel))
	}
	return frames, nil
}

// cropBox copies the box's pixels verbatim into a new origin-anchored image.
func cropBox(src *image.NRGBA, b Box) *image.NRGBA {
	origin := src.Bounds().Min
	cropped := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	rowLen := b.Width * 4
	for y := 0; y < b.Height; y++ {
		srcOff := src.PixOffset(origin.X+b.X, origin.Y+b.Y+y)
		dstOff := y * cropped.Stride
		copy(cropped.Pix[dstOff:dstOff+rowLen], src.Pix[srcOff:srcOff+rowLen])
	}
	return cropped
}

// fitOnCanvas scales img to fit within fill of a size x size canvas,
// preserving aspect ratio, and centers it.
func fitOnCanvas(img *image.NRGBA, size int, fill float64, kernel draw.Interpolator) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 || size == 0 {
		return canvas
	}

	scaleX := float64(size) * fill / float64(srcW)
	scaleY := float64(size) * fill / float64(srcH)
	sc := math.Min(scaleX, scaleY)

	dstW := max(int(math.Floor(float64(srcW)*sc)), 1)
	dstH := max(int(math.Floor(float64(srcH)*sc)), 1)

	offX := (size - dstW) / 2
	offY := (size - dstH) / 2

	dstRect := image.Rect(offX, offY, offX+dstW, offY+dstH)
	kernel.Scale(canvas, dstRect, img, b, draw.Src, nil)
	return canvas
}
