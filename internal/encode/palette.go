package encode

import (
	"image"
	"image/color"
	"log"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// alphaCutoff splits pixels into opaque and transparent for palette output.
const alphaCutoff = 128

// maxPaletteSamples bounds the k-means input across all frames.
const maxPaletteSamples = 12000

// BuildPalette returns at most n opaque colours representative of the
// frames. When the frames use n colours or fewer they are returned exactly,
// in first-seen order; otherwise k-means picks the centres, most populated
// first, with dominantcolor as a fallback.
func BuildPalette(frames []*image.NRGBA, n int) color.Palette {
	if n <= 0 {
		return nil
	}

	exact, ok := exactColors(frames, n)
	if ok {
		return exact
	}

	if p := kmeansPalette(frames, n); len(p) != 0 {
		return p
	}
	log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
	return dominantPalette(frames, n)
}

// exactColors collects distinct opaque colours; ok is false once more than
// n are seen.
func exactColors(frames []*image.NRGBA, n int) (color.Palette, bool) {
	seen := make(map[uint32]struct{})
	var out color.Palette
	for _, f := range frames {
		for i := 0; i < len(f.Pix); i += 4 {
			if f.Pix[i+3] < alphaCutoff {
				continue
			}
			key := uint32(f.Pix[i])<<16 | uint32(f.Pix[i+1])<<8 | uint32(f.Pix[i+2])
			if _, dup := seen[key]; dup {
				continue
			}
			if len(out) == n {
				return nil, false
			}
			seen[key] = struct{}{}
			out = append(out, color.NRGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 255})
		}
	}
	return out, true
}

func kmeansPalette(frames []*image.NRGBA, n int) color.Palette {
	total := 0
	for _, f := range frames {
		total += len(f.Pix) / 4
	}
	if total == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large frame sets.
	step := 1
	if total > maxPaletteSamples {
		step = int(math.Sqrt(float64(total)/float64(maxPaletteSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(total, maxPaletteSamples))
	for _, f := range frames {
		b := f.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y += step {
			for x := b.Min.X; x < b.Max.X; x += step {
				c := f.NRGBAAt(x, y)
				if c.A < alphaCutoff {
					continue
				}
				dataset = append(dataset, clusters.Coordinates{
					float64(c.R) / 255.0,
					float64(c.G) / 255.0,
					float64(c.B) / 255.0,
				})
			}
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	k := min(n, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Most populated clusters first.
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	out := make(color.Palette, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, b := col.RGB255()
		out = appendUnique(out, color.NRGBA{R: r, G: g, B: b, A: 255})
	}
	return out
}

func dominantPalette(frames []*image.NRGBA, n int) color.Palette {
	var out color.Palette
	for _, f := range frames {
		for _, c := range dominantcolor.FindWeight(f, n) {
			if len(out) == n {
				return out
			}
			out = appendUnique(out, color.NRGBA{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B, A: 255})
		}
	}
	if len(out) == 0 {
		out = append(out, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	}
	return out
}

func appendUnique(p color.Palette, c color.NRGBA) color.Palette {
	for _, existing := range p {
		if existing == c {
			return p
		}
	}
	return append(p, c)
}

// labMapper maps colours to the nearest palette entry in CIE Lab space.
type labMapper struct {
	palette []colorful.Color
	offset  int // index of palette[0] in the output palette
	cache   map[uint32]uint8
}

func newLabMapper(p color.Palette, offset int) *labMapper {
	m := &labMapper{
		palette: make([]colorful.Color, len(p)),
		offset:  offset,
		cache:   make(map[uint32]uint8),
	}
	for i, c := range p {
		m.palette[i], _ = colorful.MakeColor(c)
	}
	return m
}

func (m *labMapper) index(r, g, b uint8) uint8 {
	key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if idx, ok := m.cache[key]; ok {
		return idx
	}
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	best, bestDist := 0, math.Inf(1)
	for i, p := range m.palette {
		if d := c.DistanceLab(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	idx := uint8(best + m.offset)
	m.cache[key] = idx
	return idx
}
