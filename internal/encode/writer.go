package encode

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Output formats.
const (
	FormatGIF  = "gif"
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// DefaultFormats is every supported output format.
var DefaultFormats = []string{FormatGIF, FormatWebP, FormatPNG}

// ValidFormat reports whether name is a supported output format.
func ValidFormat(name string) bool {
	switch strings.ToLower(name) {
	case FormatGIF, FormatWebP, FormatPNG:
		return true
	}
	return false
}

// Options selects and configures the artifacts written for one sheet.
type Options struct {
	Formats []string
	GIF     GIFOptions // GIF.DelayMs also drives the WebP timing
}

// WriteAll writes the requested artifacts into dir concurrently:
// animation.gif, animation.webp and frame_NN.png files. It returns the
// written paths in format order.
func WriteAll(ctx context.Context, dir string, frames []*image.NRGBA, o Options) ([]string, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("encode: mkdir %s: %w", dir, err)
	}

	var mu sync.Mutex
	written := make([][]string, len(o.Formats))

	g, ctx := errgroup.WithContext(ctx)
	for i, format := range o.Formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var paths []string
			var err error
			switch strings.ToLower(format) {
			case FormatGIF:
				path := filepath.Join(dir, "animation.gif")
				err = writeFile(path, func(w io.Writer) error { return GIF(w, frames, o.GIF) })
				paths = []string{path}
			case FormatWebP:
				path := filepath.Join(dir, "animation.webp")
				err = writeFile(path, func(w io.Writer) error { return WebP(w, frames, o.GIF.DelayMs) })
				paths = []string{path}
			case FormatPNG:
				paths, err = PNGFrames(dir, frames)
			default:
				err = fmt.Errorf("encode: unknown format %q", format)
			}
			if err != nil {
				return err
			}
			mu.Lock()
			written[i] = paths
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, paths := range written {
		out = append(out, paths...)
	}
	return out, nil
}

// PNGFrames writes frame_01.png, frame_02.png, ... into dir.
func PNGFrames(dir string, frames []*image.NRGBA) ([]string, error) {
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		path := filepath.Join(dir, fmt.Sprintf("frame_%02d.png", i+1))
		if err := writeFile(path, func(w io.Writer) error { return png.Encode(w, f) }); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encode: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		f.Close()
		return fmt.Errorf("encode: %s: %w", filepath.Base(path), err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("encode: flush %s: %w", path, err)
	}
	return f.Close()
}
