// Package effects holds whole-frame tonal transforms applied between frame
// composition and the tape degradation pass.
package effects

import (
	"image"
	"math/rand"
)

type Effect interface {
	Apply(img *image.RGBA)
}

// Luma returns the integer ITU-R 601 luminance of an RGB triple
func Luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}

// Grayscale replaces R, G and B with their luminance
type Grayscale struct{}

func (Grayscale) Apply(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			l := Luma(row[i], row[i+1], row[i+2])
			row[i], row[i+1], row[i+2] = l, l, l
		}
	}
}

const (
	JumpContrast   = 1.8
	JumpBrightness = 1.3
	JumpInvertProb = 0.3
)

// Jumpscare is the flash look of a jump-scare window: contrast stretched
// around the mean luminance, then brightened, optionally inverted.
type Jumpscare struct {
	Contrast   float64
	Brightness float64
	Invert     bool
}

// NewJumpscare draws the inversion decision from rng
func NewJumpscare(rng *rand.Rand) *Jumpscare {
	return &Jumpscare{
		Contrast:   JumpContrast,
		Brightness: JumpBrightness,
		Invert:     rng.Float64() < JumpInvertProb,
	}
}

func (j *Jumpscare) Apply(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	var sum uint64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			sum += uint64(Luma(row[i], row[i+1], row[i+2]))
		}
	}
	mean := float64(sum) / float64(w*h)

	var lut [256]uint8
	for v := range lut {
		c := mean + (float64(v)-mean)*j.Contrast
		c = clamp(c) * j.Brightness
		u := uint8(clamp(c))
		if j.Invert {
			u = 255 - u
		}
		lut[v] = u
	}

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
