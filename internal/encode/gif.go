package encode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// GIF defaults: 300x300 canvas, 10 px margin.
const (
	DefaultGIFSize    = 300
	DefaultGIFPadding = 10
	DefaultGIFColors  = 64
	DefaultDelayMs    = 300
)

// ErrNoFrames is returned when an encoder is handed an empty sequence.
var ErrNoFrames = errors.New("encode: no frames")

// GIFOptions controls GIF assembly.
type GIFOptions struct {
	// Size is the output canvas edge; 0 keeps the frames' own size.
	Size int
	// Padding is the transparent margin, in pixels, around each refitted frame.
	// Only used when Size is set.
	Padding int
	// DelayMs is the per-frame display time.
	DelayMs int
	// Colors caps the opaque palette size (1-255).
	Colors int
}

// GIF encodes frames as an infinitely looping animated GIF with a shared
// palette. Palette index 0 is transparent and every frame is cleared to the
// background before the next one is drawn.
func GIF(w io.Writer, frames []*image.NRGBA, o GIFOptions) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if o.Colors < 1 || o.Colors > 255 {
		return fmt.Errorf("encode: gif colors %d out of range 1-255", o.Colors)
	}

	if o.Size > 0 {
		inner := o.Size - 2*o.Padding
		if inner < 1 {
			return fmt.Errorf("encode: gif padding %d leaves no room in %dpx canvas", o.Padding, o.Size)
		}
		refit := make([]*image.NRGBA, len(frames))
		for i, f := range frames {
			refit[i] = refitFrame(f, o.Size, o.Padding)
		}
		frames = refit
	}

	opaque := BuildPalette(frames, o.Colors)
	pal := make(color.Palette, 0, len(opaque)+1)
	pal = append(pal, color.NRGBA{})
	pal = append(pal, opaque...)
	mapper := newLabMapper(opaque, 1)

	delay := delayCentiseconds(o.DelayMs)
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: 0,
	}
	for i, f := range frames {
		anim.Image[i] = quantize(f, pal, mapper)
		anim.Delay[i] = delay
		anim.Disposal[i] = gif.DisposalBackground
	}
	b := frames[0].Bounds()
	anim.Config = image.Config{ColorModel: pal, Width: b.Dx(), Height: b.Dy()}

	return gif.EncodeAll(w, anim)
}

// refitFrame scales a square frame into size-2*padding and centers it on a
// transparent size x size canvas.
func refitFrame(f *image.NRGBA, size, padding int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	inner := size - 2*padding
	off := (size - inner) / 2
	draw.CatmullRom.Scale(canvas, image.Rect(off, off, off+inner, off+inner), f, f.Bounds(), draw.Src, nil)
	return canvas
}

func quantize(f *image.NRGBA, pal color.Palette, m *labMapper) *image.Paletted {
	b := f.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := f.PixOffset(b.Min.X+x, b.Min.Y+y)
			if f.Pix[i+3] < alphaCutoff {
				continue // index 0, transparent
			}
			out.Pix[y*out.Stride+x] = m.index(f.Pix[i], f.Pix[i+1], f.Pix[i+2])
		}
	}
	return out
}

// delayCentiseconds converts milliseconds to GIF delay units, at least 1.
func delayCentiseconds(ms int) int {
	return max(int(math.Round(float64(ms)/10)), 1)
}
