package sprite

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestRemoveBackground_SingleSquare(t *testing.T) {
	img := newSheet(100, 100, white)
	fillRect(img, image.Rect(10, 10, 30, 30), black)

	out := RemoveBackground(img, 10)

	if got, want := countTransparent(out), 100*100-20*20; got != want {
		t.Fatalf("transparent pixels: got %d want %d", got, want)
	}
	if a := out.NRGBAAt(15, 15).A; a != 255 {
		t.Errorf("square pixel alpha = %d, want 255", a)
	}
	if a := out.NRGBAAt(50, 50).A; a != 0 {
		t.Errorf("background pixel alpha = %d, want 0", a)
	}
}

func TestRemoveBackground_DoesNotModifyInput(t *testing.T) {
	img := newSheet(16, 16, white)
	before := bytes.Clone(img.Pix)

	RemoveBackground(img, 50)

	if !bytes.Equal(before, img.Pix) {
		t.Fatal("input image was modified")
	}
}

func TestRemoveBackground_KeepsColorAndExistingAlpha(t *testing.T) {
	img := newSheet(4, 4, white)
	img.SetNRGBA(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 77})

	out := RemoveBackground(img, 5)

	if got := out.NRGBAAt(2, 2); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 77}) {
		t.Errorf("foreground pixel changed: %+v", got)
	}
	// Only alpha is cleared on background pixels.
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 0}) {
		t.Errorf("background pixel = %+v", got)
	}
}

func TestRemoveBackground_ThresholdIsStrict(t *testing.T) {
	img := newSheet(2, 1, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 103, G: 104, B: 100, A: 255}) // distance exactly 5

	if a := RemoveBackground(img, 5).NRGBAAt(1, 0).A; a != 255 {
		t.Errorf("distance == threshold should stay opaque, alpha %d", a)
	}
	if a := RemoveBackground(img, 5.01).NRGBAAt(1, 0).A; a != 0 {
		t.Errorf("distance < threshold should be cleared, alpha %d", a)
	}
}

func TestRemoveBackground_Idempotent(t *testing.T) {
	img := gradientSheet(64, 48)

	for _, threshold := range []float64{1, 10, 25, 50} {
		once := RemoveBackground(img, threshold)
		twice := RemoveBackground(once, threshold)
		if !bytes.Equal(once.Pix, twice.Pix) {
			t.Errorf("threshold %.0f: second pass changed the result", threshold)
		}
	}
}

func TestRemoveBackground_Monotonic(t *testing.T) {
	img := gradientSheet(64, 48)

	prev := -1
	for threshold := 0.0; threshold <= 120; threshold += 7.5 {
		n := countTransparent(RemoveBackground(img, threshold))
		if n < prev {
			t.Fatalf("threshold %.1f: %d transparent pixels, fewer than %d at a lower threshold", threshold, n, prev)
		}
		prev = n
	}
}

func TestRemoveBackground_SubImageOrigin(t *testing.T) {
	img := newSheet(40, 40, black)
	fillRect(img, image.Rect(10, 10, 40, 40), white)
	fillRect(img, image.Rect(20, 20, 25, 25), red)
	sub := img.SubImage(image.Rect(10, 10, 40, 40)).(*image.NRGBA)

	out := RemoveBackground(sub, 10)

	if out.Bounds() != image.Rect(0, 0, 30, 30) {
		t.Fatalf("bounds = %v, want origin-anchored 30x30", out.Bounds())
	}
	if a := out.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("sampled corner should be background, alpha %d", a)
	}
	if a := out.NRGBAAt(12, 12).A; a != 255 {
		t.Errorf("red square should survive, alpha %d", a)
	}
}

// gradientSheet builds an image with a smooth colour ramp so that every
// threshold clears a different number of pixels.
func gradientSheet(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(255 - x*2),
				G: uint8(255 - y*3),
				B: uint8(255 - (x+y)%64),
				A: 255,
			})
		}
	}
	return img
}
