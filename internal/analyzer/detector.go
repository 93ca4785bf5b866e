// Package analyzer finds visually busy areas of still images. The renderer
// uses the result to aim the slow zoom-and-pan at something worth looking at.
package analyzer

import (
	"image"
	"sort"
)

// Region is a detected area of interest in source image coordinates
type Region struct {
	Rect  image.Rectangle
	Score float64 // share of the image covered by edges inside Rect
}

// Detector is the interface for focus detection strategies
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// FocusPoint returns the centre of the highest scoring region as fractions of
// the image size. ok is false when the detector found nothing.
func FocusPoint(d Detector, img image.Image) (fx, fy float64, ok bool) {
	regions, err := d.Detect(img)
	if err != nil || len(regions) == 0 {
		return 0.5, 0.5, false
	}
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Score > regions[j].Score
	})

	b := img.Bounds()
	r := regions[0].Rect
	cx := float64(r.Min.X+r.Max.X)/2 - float64(b.Min.X)
	cy := float64(r.Min.Y+r.Max.Y)/2 - float64(b.Min.Y)
	return cx / float64(b.Dx()), cy / float64(b.Dy()), true
}
