package analyzer

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ContrastDetector finds edge-dense regions with a Sobel operator on a
// downscaled luminance copy of the image.
type ContrastDetector struct {
	MaxSide       int     // analysis raster size, longest side
	EdgeThreshold float64 // gradient magnitude threshold
	DilateRadius  int
	MinAreaShare  float64 // smallest region kept, as a share of the raster
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MaxSide:       160,
		EdgeThreshold: 48,
		DilateRadius:  3,
		MinAreaShare:  0.01,
	}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	src := img.Bounds()
	if src.Empty() {
		return nil, nil
	}

	gray := downscaleGray(img, d.MaxSide)
	edges := sobel(gray, d.EdgeThreshold)
	mask := dilate(edges, gray.Rect.Dx(), gray.Rect.Dy(), d.DilateRadius)
	comps := components(mask, edges, gray.Rect.Dx(), gray.Rect.Dy())

	// analysis raster -> source coordinates
	sx := float64(src.Dx()) / float64(gray.Rect.Dx())
	sy := float64(src.Dy()) / float64(gray.Rect.Dy())
	total := float64(gray.Rect.Dx() * gray.Rect.Dy())

	var regions []Region
	for _, c := range comps {
		area := float64(c.rect.Dx() * c.rect.Dy())
		if area < d.MinAreaShare*total {
			continue
		}
		regions = append(regions, Region{
			Rect: image.Rect(
				src.Min.X+int(float64(c.rect.Min.X)*sx),
				src.Min.Y+int(float64(c.rect.Min.Y)*sy),
				src.Min.X+int(math.Ceil(float64(c.rect.Max.X)*sx)),
				src.Min.Y+int(math.Ceil(float64(c.rect.Max.Y)*sy)),
			),
			Score: float64(c.edges) / total,
		})
	}
	return regions, nil
}

func downscaleGray(img image.Image, maxSide int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide > 0 && (w > maxSide || h > maxSide) {
		if w >= h {
			h = max(1, h*maxSide/w)
			w = maxSide
		} else {
			w = max(1, w*maxSide/h)
			h = maxSide
		}
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(gray, gray.Rect, img, b, draw.Src, nil)
	return gray
}

// sobel marks pixels whose gradient magnitude exceeds threshold
func sobel(gray *image.Gray, threshold float64) []bool {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := make([]bool, w*h)
	px := func(x, y int) float64 { return float64(gray.Pix[y*gray.Stride+x]) }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -px(x-1, y-1) + px(x+1, y-1) -
				2*px(x-1, y) + 2*px(x+1, y) -
				px(x-1, y+1) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			out[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return out
}

// dilate grows the edge mask by a square of the given radius, done as two
// separable passes
func dilate(mask []bool, w, h, radius int) []bool {
	if radius <= 0 {
		return append([]bool(nil), mask...)
	}
	horiz := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for k := max(0, x-radius); k <= min(w-1, x+radius); k++ {
				if mask[y*w+k] {
					horiz[y*w+x] = true
					break
				}
			}
		}
	}
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for k := max(0, y-radius); k <= min(h-1, y+radius); k++ {
				if horiz[k*w+x] {
					out[y*w+x] = true
					break
				}
			}
		}
	}
	return out
}

type component struct {
	rect  image.Rectangle
	edges int
}

// components labels 4-connected areas of mask and counts the raw edge
// pixels inside each
func components(mask, edges []bool, w, h int) []component {
	seen := make([]bool, len(mask))
	var out []component
	var stack []int

	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		c := component{rect: image.Rect(w, h, 0, 0)}
		stack = append(stack[:0], start)
		seen[start] = true

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w

			c.rect.Min.X = min(c.rect.Min.X, x)
			c.rect.Min.Y = min(c.rect.Min.Y, y)
			c.rect.Max.X = max(c.rect.Max.X, x+1)
			c.rect.Max.Y = max(c.rect.Max.Y, y+1)
			if edges[i] {
				c.edges++
			}

			for _, n := range [4]int{i - 1, i + 1, i - w, i + w} {
				if n < 0 || n >= len(mask) || seen[n] || !mask[n] {
					continue
				}
				// no wrap between rows
				if (n == i-1 && x == 0) || (n == i+1 && x == w-1) {
					continue
				}
				seen[n] = true
				stack = append(stack, n)
			}
		}
		out = append(out, c)
	}
	return out
}
