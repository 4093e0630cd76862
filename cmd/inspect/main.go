package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sprite-animator/internal/sheet"
	"sprite-animator/internal/sprite"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	threshold := fs.Float64("threshold", sprite.DefaultThreshold, "Background color distance")
	minPixels := fs.Int("min-pixels", sprite.DefaultMinPixels, "Smallest blob kept, in pixels")
	frames := fs.Int("frames", sprite.DefaultFrameCount, "Target frame count")
	rowHeight := fs.Int("row-height", sprite.DefaultRowHeight, "Reading-order row band height")
	padding := fs.Float64("padding", sprite.DefaultPadding, "Canvas padding factor")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: inspect [flags] <sheet>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	img, err := sheet.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	b := img.Bounds()
	bg := img.NRGBAAt(b.Min.X, b.Min.Y)
	fmt.Fprintf(stdout, "Sheet: %s (%dx%d)\n", path, b.Dx(), b.Dy())
	fmt.Fprintf(stdout, "Background: rgb(%d,%d,%d), threshold %.1f\n", bg.R, bg.G, bg.B, *threshold)

	clean := sprite.RemoveBackground(img, *threshold)
	blobs := sprite.DetectBlobs(clean, *minPixels)
	fmt.Fprintf(stdout, "Blobs: %d (min %d px)\n", len(blobs), *minPixels)
	if len(blobs) == 0 {
		fmt.Fprintln(stderr, "Error: no objects found")
		return 1
	}

	areas := make([]float64, len(blobs))
	for i, bl := range blobs {
		areas[i] = float64(bl.Area())
		fmt.Fprintf(stdout, "  [%2d] %-20s area=%d\n", i, bl, bl.Area())
	}
	mean, std := stat.MeanStdDev(areas, nil)
	fmt.Fprintln(stdout, "    --- Box area ---")
	fmt.Fprintf(stdout, "    Mean: %.1f, StdDev: %.1f\n", mean, std)
	fmt.Fprintf(stdout, "    Min: %.0f, Max: %.0f\n", floats.Min(areas), floats.Max(areas))

	switch {
	case len(blobs) < *frames:
		fmt.Fprintf(stdout, "Normalize: %d → %d (repeating boxes)\n", len(blobs), *frames)
	case len(blobs) > *frames:
		fmt.Fprintf(stdout, "Normalize: %d → %d (keeping largest)\n", len(blobs), *frames)
	}
	ordered := sprite.SortReadingOrder(sprite.NormalizeCount(blobs, *frames), *rowHeight)

	fmt.Fprintln(stdout, "    --- Reading order ---")
	for i, bl := range ordered {
		fmt.Fprintf(stdout, "    frame %2d: row %d  %s\n", i+1, sprite.RowIndex(bl, *rowHeight), bl)
	}
	size := sprite.CanvasSize(ordered, *padding)
	fmt.Fprintf(stdout, "Frame size: %dx%d (padding %.2f)\n", size, size, *padding)
	return 0
}
