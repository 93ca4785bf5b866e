package effects

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestGrayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(2, 0, color.RGBA{10, 200, 90, 255})

	Grayscale{}.Apply(img)

	want := []uint8{76, 149, 130}
	for x, w := range want {
		c := img.RGBAAt(x, 0)
		if c.R != w || c.G != w || c.B != w {
			t.Errorf("x=%d: got %v, want gray %d", x, c, w)
		}
		if c.A != 255 {
			t.Errorf("x=%d: alpha changed to %d", x, c.A)
		}
	}
}

func TestJumpscare(t *testing.T) {
	tests := []struct {
		name   string
		invert bool
	}{
		{"flash", false},
		{"inverted", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 2, 1))
			img.SetRGBA(0, 0, color.RGBA{60, 60, 60, 255})
			img.SetRGBA(1, 0, color.RGBA{140, 140, 140, 255})

			j := &Jumpscare{Contrast: JumpContrast, Brightness: JumpBrightness, Invert: tt.invert}
			j.Apply(img)

			// mean 100: 60 -> 28 -> 36.4, 140 -> 172 -> 223.6
			dark, light := img.RGBAAt(0, 0).R, img.RGBAAt(1, 0).R
			if tt.invert {
				dark, light = 255-dark, 255-light
			}
			if dark != 36 || light != 223 {
				t.Errorf("got dark=%d light=%d", dark, light)
			}
		})
	}
}

func TestNewJumpscareSeeded(t *testing.T) {
	a := NewJumpscare(rand.New(rand.NewSource(3)))
	b := NewJumpscare(rand.New(rand.NewSource(3)))
	if a.Invert != b.Invert {
		t.Error("Inversion must follow the generator")
	}
	if a.Contrast != JumpContrast || a.Brightness != JumpBrightness {
		t.Errorf("Unexpected parameters %+v", a)
	}
}
