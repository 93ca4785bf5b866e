package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// OSD palette. Everything drawn after the grayscale step uses neutral
// tones so black and white tapes stay gray.
var (
	colBright = color.RGBA{235, 235, 235, 255}
	colBody   = color.RGBA{210, 210, 210, 255}
	colStroke = color.RGBA{120, 120, 120, 255}
	colRule   = color.RGBA{110, 110, 110, 255}
	colBorder = color.RGBA{90, 90, 90, 255}
	colBlack  = color.RGBA{0, 0, 0, 255}
)

func fill(img *image.RGBA, c color.RGBA) {
	fillRect(img, img.Rect, c)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Rect), image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect draws a rectangle outline of the given width inside r
func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// drawText draws s with its baseline at y
func drawText(img *image.RGBA, face font.Face, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawTextTop draws s with the top of its line box at y
func drawTextTop(img *image.RGBA, face font.Face, x, y int, s string, c color.RGBA) {
	drawText(img, face, x, y+face.Metrics().Ascent.Ceil(), s, c)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// polyline strokes a sequence of points with the given width
func polyline(img *image.RGBA, pts []vec, width float32, c color.RGBA) {
	if len(pts) < 2 {
		return
	}
	half := width / 2
	minX, minY, maxX, maxY := pts[0].x, pts[0].y, pts[0].x, pts[0].y
	for _, p := range pts[1:] {
		minX, minY = min(minX, p.x), min(minY, p.y)
		maxX, maxY = max(maxX, p.x), max(maxY, p.y)
	}
	box := image.Rect(int(minX-half)-1, int(minY-half)-1, int(maxX+half)+2, int(maxY+half)+2)

	fillPath(img, box, c, func(r *vector.Rasterizer, ox, oy float32) {
		for i := 1; i < len(pts); i++ {
			a, z := pts[i-1], pts[i]
			dx, dy := z.x-a.x, z.y-a.y
			l := float32(math.Hypot(float64(dx), float64(dy)))
			if l == 0 {
				continue
			}
			nx, ny := -dy/l*half, dx/l*half
			r.MoveTo(a.x+nx-ox, a.y+ny-oy)
			r.LineTo(z.x+nx-ox, z.y+ny-oy)
			r.LineTo(z.x-nx-ox, z.y-ny-oy)
			r.LineTo(a.x-nx-ox, a.y-ny-oy)
			r.ClosePath()
		}
	})
}

func line(img *image.RGBA, x0, y0, x1, y1 float32, width float32, c color.RGBA) {
	polyline(img, []vec{{x0, y0}, {x1, y1}}, width, c)
}

// disc fills a circle
func disc(img *image.RGBA, cx, cy, radius float32, c color.RGBA) {
	box := image.Rect(int(cx-radius)-1, int(cy-radius)-1, int(cx+radius)+2, int(cy+radius)+2)
	const k = 0.5523 // cubic bezier quarter circle
	kr := radius * k
	fillPath(img, box, c, func(r *vector.Rasterizer, ox, oy float32) {
		x, y := cx-ox, cy-oy
		r.MoveTo(x+radius, y)
		r.CubeTo(x+radius, y+kr, x+kr, y+radius, x, y+radius)
		r.CubeTo(x-kr, y+radius, x-radius, y+kr, x-radius, y)
		r.CubeTo(x-radius, y-kr, x-kr, y-radius, x, y-radius)
		r.CubeTo(x+kr, y-radius, x+radius, y-kr, x+radius, y)
		r.ClosePath()
	})
}

// fillPath rasterizes a path built in box-local coordinates and composites
// it over img. The rasterizer only covers box clipped to the frame.
func fillPath(img *image.RGBA, box image.Rectangle, c color.RGBA, build func(r *vector.Rasterizer, ox, oy float32)) {
	box = box.Intersect(img.Rect)
	if box.Empty() {
		return
	}
	r := vector.NewRasterizer(box.Dx(), box.Dy())
	build(r, float32(box.Min.X), float32(box.Min.Y))
	r.Draw(img, box, image.NewUniform(c), image.Point{})
}

type vec struct{ x, y float32 }
