package renderer

import (
	"image"
	"math"
)

// CameraState is the view onto a source image. X and Y are the view centre
// as fractions of the source size, Zoom >= 1 shrinks the visible window.
type CameraState struct {
	X    float64
	Y    float64
	Zoom float64
}

// Key pins a camera state to a chapter-local progress value in [0, 1]
type Key struct {
	T float64
	CameraState
}

// Path is an ordered list of keys
type Path []Key

// KenBurns builds the two-key path of a live footage chapter: full view at
// the start, zoomed onto the focus point at the end
func KenBurns(focusX, focusY, zoom float64) Path {
	return Path{
		{T: 0, CameraState: CameraState{X: 0.5, Y: 0.5, Zoom: 1}},
		{T: 1, CameraState: CameraState{X: focusX, Y: focusY, Zoom: zoom}},
	}
}

// At interpolates the path at progress t with raised-cosine easing
func (p Path) At(t float64) CameraState {
	if len(p) == 0 {
		return CameraState{X: 0.5, Y: 0.5, Zoom: 1}
	}
	if t <= p[0].T {
		return p[0].CameraState
	}
	last := p[len(p)-1]
	if t >= last.T {
		return last.CameraState
	}

	var prev, next Key
	for i := 0; i < len(p)-1; i++ {
		if t >= p[i].T && t < p[i+1].T {
			prev, next = p[i], p[i+1]
			break
		}
	}

	span := next.T - prev.T
	if span <= 0 {
		return next.CameraState
	}
	e := easeRaisedCosine((t - prev.T) / span)

	return CameraState{
		X:    lerp(prev.X, next.X, e),
		Y:    lerp(prev.Y, next.Y, e),
		Zoom: lerp(prev.Zoom, next.Zoom, e),
	}
}

// Crop returns the source window for this state, kept inside bounds
func (s CameraState) Crop(bounds image.Rectangle) image.Rectangle {
	zoom := max(1, s.Zoom)
	w := int(math.Round(float64(bounds.Dx()) / zoom))
	h := int(math.Round(float64(bounds.Dy()) / zoom))
	w, h = max(1, w), max(1, h)

	cx := float64(bounds.Min.X) + s.X*float64(bounds.Dx())
	cy := float64(bounds.Min.Y) + s.Y*float64(bounds.Dy())
	x0 := int(math.Round(cx - float64(w)/2))
	y0 := int(math.Round(cy - float64(h)/2))

	x0 = min(max(x0, bounds.Min.X), bounds.Max.X-w)
	y0 = min(max(y0, bounds.Min.Y), bounds.Max.Y-h)
	return image.Rect(x0, y0, x0+w, y0+h)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeRaisedCosine(t float64) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*t)
}
