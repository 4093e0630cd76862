package encode

import (
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
)

// webpDisposeBackground clears the frame area before the next frame.
const webpDisposeBackground = 1

// WebP encodes frames as a looping lossless animated WebP.
func WebP(w io.Writer, frames []*image.NRGBA, delayMs int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	ani := nativewebp.Animation{
		Images:          make([]image.Image, len(frames)),
		Durations:       make([]uint, len(frames)),
		Disposals:       make([]uint, len(frames)),
		LoopCount:       0,
		BackgroundColor: 0,
	}
	for i, f := range frames {
		ani.Images[i] = f
		ani.Durations[i] = uint(max(delayMs, 1))
		ani.Disposals[i] = webpDisposeBackground
	}
	return nativewebp.EncodeAll(w, &ani, nil)
}
