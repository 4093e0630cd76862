// Package sprite turns a sprite sheet into equally sized animation frames.
//
// The stages run strictly in order and each returns freshly allocated data:
//
//	RemoveBackground -> DetectBlobs -> NormalizeCount -> SortReadingOrder -> ExtractFrames
//
// Nothing in the package holds state between calls, so independent sheets
// can be processed concurrently.
package sprite

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultThreshold is the background distance used when none is configured.
const DefaultThreshold = 1.0

// ErrNoForeground is returned by Run when no blob survives detection.
var ErrNoForeground = errors.New("sprite: no objects found")

// Params collects the tunables of one pipeline run.
type Params struct {
	Threshold  float64 // RGB distance below which a pixel is background
	MinPixels  int     // noise floor for blobs
	FrameCount int     // number of frames to produce
	RowHeight  int     // reading-order band height
	Extract    ExtractOptions
}

// DefaultParams returns threshold 1, 10 px noise floor, 12 frames, 30 px rows.
func DefaultParams() Params {
	return Params{
		Threshold:  DefaultThreshold,
		MinPixels:  DefaultMinPixels,
		FrameCount: DefaultFrameCount,
		RowHeight:  DefaultRowHeight,
		Extract:    DefaultExtractOptions(),
	}
}

// Result is the outcome of a successful run.
type Result struct {
	Frames   []*image.NRGBA
	Boxes    []Box // one per frame, in frame order
	Detected int   // blobs found before count normalization
	Size     int   // frame width and height
}

// Run executes the whole pipeline on src, which is not modified.
func Run(src *image.NRGBA, p Params) (*Result, error) {
	if p.FrameCount < 1 {
		return nil, fmt.Errorf("sprite: frame count %d must be at least 1", p.FrameCount)
	}

	clean := RemoveBackground(src, p.Threshold)
	blobs := DetectBlobs(clean, p.MinPixels)
	if len(blobs) == 0 {
		return nil, ErrNoForeground
	}

	boxes := NormalizeCount(blobs, p.FrameCount)
	boxes = SortReadingOrder(boxes, p.RowHeight)

	frames, err := ExtractFrames(clean, boxes, p.Extract)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frames:   frames,
		Boxes:    boxes,
		Detected: len(blobs),
		Size:     CanvasSize(boxes, p.Extract.Padding),
	}, nil
}

// ParseKernel maps a resampling filter name to an interpolator.
// Only smooth filters are accepted; "" selects catmullrom.
func ParseKernel(name string) (draw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "", "catmullrom", "catmull-rom":
		return draw.CatmullRom, nil
	case "bilinear":
		return draw.BiLinear, nil
	case "approxbilinear":
		return draw.ApproxBiLinear, nil
	default:
		return nil, fmt.Errorf("sprite: unknown resample filter %q", name)
	}
}
