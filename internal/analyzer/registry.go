package analyzer

import (
	"fmt"
	"image"
)

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "center":
		return CenterDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// CenterDetector always reports the middle third of the image
type CenterDetector struct{}

func (CenterDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}
	w, h := b.Dx()/3, b.Dy()/3
	r := image.Rect(b.Min.X+w, b.Min.Y+h, b.Max.X-w, b.Max.Y-h)
	return []Region{{Rect: r, Score: 1}}, nil
}
