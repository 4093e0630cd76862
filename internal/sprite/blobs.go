package sprite

import "image"

// DefaultMinPixels is the noise floor below which a component is dropped.
const DefaultMinPixels = 10

// 8-connected neighbourhood.
var (
	neighbourDX = [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	neighbourDY = [8]int{-1, -1, -1, 0, 0, 1, 1, 1}
)

// DetectBlobs finds 8-connected groups of non-transparent pixels and returns
// the bounding box of every group with at least minPixels pixels, in raster
// scan order of each group's first pixel.
func DetectBlobs(img *image.NRGBA, minPixels int) []Box {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Foreground mask and visited arena, both indexed y*w+x.
	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			if img.Pix[row+x*4+3] != 0 {
				fg[y*w+x] = true
			}
		}
	}
	visited := make([]bool, w*h)

	var boxes []Box
	queue := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !fg[idx] || visited[idx] {
				continue
			}

			// BFS from this pixel
			queue = queue[:0]
			queue = append(queue, idx)
			visited[idx] = true
			minX, maxX, minY, maxY := x, x, y, y
			count := 0

			for head := 0; head < len(queue); head++ {
				curr := queue[head]
				count++

				cy := curr / w
				cx := curr % w
				if cx < minX {
					minX = cx
				}
				if cx > maxX {
					maxX = cx
				}
				if cy < minY {
					minY = cy
				}
				if cy > maxY {
					maxY = cy
				}

				for d := 0; d < 8; d++ {
					nx := cx + neighbourDX[d]
					ny := cy + neighbourDY[d]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if fg[ni] && !visited[ni] {
						visited[ni] = true
						queue = append(queue, ni)
					}
				}
			}

			if count < minPixels {
				continue
			}
			boxes = append(boxes, Box{
				X:      minX,
				Y:      minY,
				Width:  maxX - minX + 1,
				Height: maxY - minY + 1,
			})
		}
	}

	return boxes
}
