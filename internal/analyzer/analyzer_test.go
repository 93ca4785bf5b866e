package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func squareImage(w, h int, sq image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := sq.Min.Y; y < sq.Max.Y; y++ {
		for x := sq.Min.X; x < sq.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func TestContrastDetector(t *testing.T) {
	// white square in the lower right quadrant
	img := squareImage(400, 300, image.Rect(240, 160, 360, 260))

	regions, err := NewContrastDetector().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) == 0 {
		t.Fatal("Expected at least one region, got none")
	}

	fx, fy, ok := FocusPoint(NewContrastDetector(), img)
	if !ok {
		t.Fatal("Expected a focus point")
	}
	if fx < 0.6 || fx > 0.9 || fy < 0.5 || fy > 0.95 {
		t.Errorf("Focus (%.2f, %.2f) is not near the square", fx, fy)
	}
}

func TestContrastDetectorFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 120, 80))
	fx, fy, ok := FocusPoint(NewContrastDetector(), img)
	if ok {
		t.Error("Flat image must not produce a focus region")
	}
	if fx != 0.5 || fy != 0.5 {
		t.Errorf("Expected centre fallback, got (%.2f, %.2f)", fx, fy)
	}
}

func TestCenterDetector(t *testing.T) {
	fx, fy, ok := FocusPoint(CenterDetector{}, image.NewGray(image.Rect(0, 0, 90, 60)))
	if !ok || fx != 0.5 || fy != 0.5 {
		t.Errorf("got (%.2f, %.2f, %v)", fx, fy, ok)
	}
}

func TestDilate(t *testing.T) {
	mask := make([]bool, 25)
	mask[12] = true // centre of 5x5

	out := dilate(mask, 5, 5, 1)
	count := 0
	for _, v := range out {
		if v {
			count++
		}
	}
	if count != 9 {
		t.Errorf("Expected a 3x3 block, got %d pixels", count)
	}
}

func TestComponentsDoNotWrapRows(t *testing.T) {
	// 3x2: right edge of row 0 and left edge of row 1 are index neighbours
	mask := []bool{false, false, true, true, false, false}
	comps := components(mask, mask, 3, 2)
	if len(comps) != 2 {
		t.Errorf("Expected 2 components, got %d", len(comps))
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"", false},
		{"center", false},
		{"ocr", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}
