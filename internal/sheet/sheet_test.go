package sheet

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_PNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	src.SetNRGBA(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 200})
	path := filepath.Join(t.TempDir(), "hero.png")
	writePNG(t, path, src)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("bounds %v", img.Bounds())
	}
	if got := img.NRGBAAt(3, 2); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 200}) {
		t.Errorf("pixel = %+v", got)
	}
	if len(img.Pix) != 8*6*4 {
		t.Errorf("len(Pix) = %d, want %d", len(img.Pix), 8*6*4)
	}
}

var (
	left  = color.NRGBA{R: 200, G: 40, B: 60, A: 255}
	right = color.NRGBA{R: 20, G: 180, B: 90, A: 255}
)

// twoTone returns a 16x16 opaque image, left half and right half.
func twoTone() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := left
			if x >= 8 {
				c = right
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol && a.A == b.A
}

func TestLoad_Formats(t *testing.T) {
	src := twoTone()
	paletted := image.NewPaletted(src.Bounds(), color.Palette{left, right})
	for y := 0; y < 16; y++ {
		for x := 8; x < 16; x++ {
			paletted.SetColorIndex(x, y, 1)
		}
	}

	tests := []struct {
		file   string
		encode func(io.Writer) error
		tol    int
	}{
		{"sheet.png", func(w io.Writer) error { return png.Encode(w, src) }, 0},
		{"sheet.tga", func(w io.Writer) error { return tga.Encode(w, src) }, 0},
		{"SHEET.TGA", func(w io.Writer) error { return tga.Encode(w, src) }, 0},
		{"sheet.bmp", func(w io.Writer) error { return bmp.Encode(w, src) }, 0},
		{"sheet.webp", func(w io.Writer) error { return nativewebp.Encode(w, src, nil) }, 0},
		{"sheet.gif", func(w io.Writer) error { return gif.Encode(w, paletted, nil) }, 0},
		{"sheet.jpg", func(w io.Writer) error { return jpeg.Encode(w, src, &jpeg.Options{Quality: 100}) }, 30},
		{"sheet.jpeg", func(w io.Writer) error { return jpeg.Encode(w, src, &jpeg.Options{Quality: 100}) }, 30},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				t.Fatal(err)
			}

			img, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			if img.Bounds() != image.Rect(0, 0, 16, 16) {
				t.Fatalf("bounds %v", img.Bounds())
			}
			if got := img.NRGBAAt(2, 5); !near(got, left, tt.tol) {
				t.Errorf("left pixel = %+v, want %+v", got, left)
			}
			if got := img.NRGBAAt(13, 10); !near(got, right, tt.tol) {
				t.Errorf("right pixel = %+v, want %+v", got, right)
			}
		})
	}
}

func TestDecode_ByExtension(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, twoTone()); err != nil {
		t.Fatal(err)
	}

	// PNG bytes must reach the PNG decoder even though tga is linked in.
	img, err := Decode(bytes.NewReader(buf.Bytes()), ".png")
	if err != nil {
		t.Fatalf("Decode png: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != left {
		t.Errorf("pixel = %+v", got)
	}

	if _, err := Decode(bytes.NewReader(buf.Bytes()), ".psd"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if Supported("notes.txt") || !Supported("a/b/HERO.Tga") {
		t.Error("Supported disagrees with the decoder table")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected decode error")
	}
}

func TestToNRGBA_OpaqueSources(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(1, 1, color.Gray{Y: 90})

	out := ToNRGBA(gray)

	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("alpha at %d = %d, want 255", i, out.Pix[i])
		}
	}
	if got := out.NRGBAAt(1, 1); got.R != 90 || got.G != 90 || got.B != 90 {
		t.Errorf("gray pixel = %+v", got)
	}
}

func TestToNRGBA_ReanchorsSubImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	src.SetNRGBA(6, 7, color.NRGBA{R: 255, A: 255})
	sub := src.SubImage(image.Rect(5, 5, 10, 10))

	out := ToNRGBA(sub)

	if out.Bounds() != image.Rect(0, 0, 5, 5) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if got := out.NRGBAAt(1, 2); got.R != 255 || got.A != 255 {
		t.Errorf("pixel = %+v", got)
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	writePNG(t, filepath.Join(dir, "walk.png"), img)
	writePNG(t, filepath.Join(dir, "chars", "hero.png"), img)
	writePNG(t, filepath.Join(dir, ".cache", "skip.png"), img)
	for _, name := range []string{"walk.jpg", "notes.txt", "chars/hero.gif"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	idx, err := BuildIndex(dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	var names []string
	for _, e := range idx.Entries() {
		names = append(names, e.Name)
	}
	if want := []string{"chars/hero", "walk"}; !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if path, ok := idx.Lookup("walk"); !ok || filepath.Ext(path) != ".png" {
		t.Errorf("walk resolved to %q, want the PNG", path)
	}
	if path, ok := idx.Lookup("chars/hero"); !ok || filepath.Ext(path) != ".png" {
		t.Errorf("chars/hero resolved to %q, want the PNG", path)
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d", idx.Len())
	}
}

func TestBuildIndex_SkipsOutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "animations")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	writePNG(t, filepath.Join(dir, "hero.png"), img)
	writePNG(t, filepath.Join(out, "hero", "frame_01.png"), img)
	writePNG(t, filepath.Join(out, "hero", "frame_02.png"), img)

	idx, err := BuildIndex(dir, out)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("indexed %v, want only hero", idx.Entries())
	}

	// Relative spellings of the same directory are skipped too.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(wd, out)
	if err != nil {
		t.Skip("output dir not expressible relative to cwd")
	}
	idx, err = BuildIndex(dir, rel)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("relative skip: indexed %v", idx.Entries())
	}

	// Without a skip list the output looks like sheets.
	idx, err = BuildIndex(dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}
}

func TestBuildIndex_MissingDir(t *testing.T) {
	if _, err := BuildIndex(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error")
	}
}
