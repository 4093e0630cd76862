package sheet

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// decoders maps a file extension to its decoder. The tga package registers
// itself with image.RegisterFormat under an empty magic string, which makes
// image.Decode hand every file to it, so formats are chosen by extension.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".gif":  gif.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
}

// Load reads and decodes a sprite sheet file into an origin-anchored NRGBA image.
// The decoder is picked from the file extension.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: read %s: %w", path, err)
	}
	img, err := Decode(bytes.NewReader(raw), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("sheet: decode %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes r as the format named by ext (".png", ".tga", ...).
func Decode(r io.Reader, ext string) (*image.NRGBA, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", ext)
	}
	img, err := decode(r)
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to an NRGBA anchored at (0,0).
// An NRGBA already anchored at the origin is returned as is.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.CMYK:
		// No alpha channel: draw and force opaque.
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
