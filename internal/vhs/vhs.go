// Package vhs degrades composited frames into analog tape footage.
//
// The stages run in a fixed order and compound: scanlines, luminance noise,
// row jitter, dropout bands, chroma shift, brightness flicker and finally the
// inter-frame smear against the previous degraded frame. All randomness comes
// from the caller's generator, so call order is part of the output.
package vhs

import (
	"image"
	"math/rand"

	"github.com/ivlev/vhstape/internal/config"
)

type Filter struct {
	Style config.StyleConfig
}

func New(style config.StyleConfig) *Filter {
	return &Filter{Style: style}
}

// Apply degrades cur in place and returns it together with the buffer the
// caller must pass as prev on the next frame. prev is consumed: its storage
// is reused for the returned carry. prev == nil on the first frame.
func (f *Filter) Apply(rng *rand.Rand, cur, prev *image.RGBA) (out, carry *image.RGBA) {
	s := f.Style
	if s.Scanlines {
		Scanlines(cur, s.VHSStrength)
	}
	Noise(cur, s.VHSStrength, rng)
	Jitter(cur, s.JitterStrength, rng)
	Dropouts(cur, s.DropoutStrength, rng)
	ChromaShift(cur, s.ChromaShift)
	Flicker(cur, s.FilmFlicker, rng)
	Smear(cur, prev, s.PFrameSmear, rng)

	carry = prev
	if carry == nil || carry.Rect != cur.Rect {
		carry = image.NewRGBA(cur.Rect)
	}
	copy(carry.Pix, cur.Pix)
	return cur, carry
}

// Scanlines attenuates even rows more than odd rows
func Scanlines(img *image.RGBA, strength float64) {
	base := 1.0 - strength*0.12
	lift := strength * 0.06
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		k := base
		if y%2 == 1 {
			k += lift
		}
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = clamp(float64(row[i]) * k)
			row[i+1] = clamp(float64(row[i+1]) * k)
			row[i+2] = clamp(float64(row[i+2]) * k)
		}
	}
}

// Noise adds gaussian luminance noise, one draw per pixel shared by R, G and B
func Noise(img *image.RGBA, strength float64, rng *rand.Rand) {
	sigma := 6 + strength*18
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			n := rng.NormFloat64() * sigma
			row[i] = clamp(float64(row[i]) + n)
			row[i+1] = clamp(float64(row[i+1]) + n)
			row[i+2] = clamp(float64(row[i+2]) + n)
		}
	}
}

// Jitter rolls random rows horizontally by up to 2+8*strength pixels
func Jitter(img *image.RGBA, strength float64, rng *rand.Rand) {
	maxShift := int(2 + strength*8)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tmp := make([]byte, w*4)
	for y := 0; y < h; y++ {
		if rng.Float64() >= 0.35*strength {
			continue
		}
		shift := rng.Intn(2*maxShift+1) - maxShift
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		rollPixels(row, tmp, shift)
	}
}

// Dropouts blends a few horizontal bands toward near black or near white
func Dropouts(img *image.RGBA, strength float64, rng *rand.Rand) {
	bands := int(1 + strength*6)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	maxBand := int(6 + strength*18)
	for b := 0; b < bands; b++ {
		if rng.Float64() >= 0.6*strength {
			continue
		}
		y0 := rng.Intn(h)
		bh := 2
		if maxBand > 2 {
			bh += rng.Intn(maxBand - 1)
		}
		y1 := min(h, y0+bh)
		val := 235.0
		if rng.Float64() < 0.5 {
			val = 20
		}
		for y := y0; y < y1; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			for i := 0; i < len(row); i += 4 {
				row[i] = clamp(float64(row[i])*0.25 + val*0.75)
				row[i+1] = clamp(float64(row[i+1])*0.25 + val*0.75)
				row[i+2] = clamp(float64(row[i+2])*0.25 + val*0.75)
			}
		}
	}
}

// ChromaShift rolls red right and blue left by px pixels
func ChromaShift(img *image.RGBA, px int) {
	if px <= 0 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	red := make([]byte, w)
	blue := make([]byte, w)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			red[x] = row[x*4]
			blue[x] = row[x*4+2]
		}
		for x := 0; x < w; x++ {
			row[x*4] = red[mod(x-px, w)]
			row[x*4+2] = blue[mod(x+px, w)]
		}
	}
}

// Flicker scales the whole frame by one random factor
func Flicker(img *image.RGBA, amount float64, rng *rand.Rand) {
	k := 1.0 + (rng.Float64()*2-1)*amount*0.12
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = clamp(float64(row[i]) * k)
			row[i+1] = clamp(float64(row[i+1]) * k)
			row[i+2] = clamp(float64(row[i+2]) * k)
		}
	}
}

// Smear blends random square blocks of prev into cur. No-op without prev.
func Smear(cur, prev *image.RGBA, strength float64, rng *rand.Rand) {
	if prev == nil || strength <= 0 || prev.Rect != cur.Rect {
		return
	}
	w, h := cur.Rect.Dx(), cur.Rect.Dy()
	bs := int(8 + strength*24)
	blocks := int(10 + strength*60)
	for n := 0; n < blocks; n++ {
		x0 := rng.Intn(max(0, w-bs) + 1)
		y0 := rng.Intn(max(0, h-bs) + 1)
		a := 0.25 + rng.Float64()*(0.55*strength)
		x1, y1 := min(w, x0+bs), min(h, y0+bs)
		for y := y0; y < y1; y++ {
			c := cur.Pix[y*cur.Stride:]
			p := prev.Pix[y*prev.Stride:]
			for x := x0; x < x1; x++ {
				i := x * 4
				c[i] = clamp(float64(c[i])*(1-a) + float64(p[i])*a)
				c[i+1] = clamp(float64(c[i+1])*(1-a) + float64(p[i+1])*a)
				c[i+2] = clamp(float64(c[i+2])*(1-a) + float64(p[i+2])*a)
			}
		}
	}
}

// rollPixels circularly shifts a row of RGBA pixels right by shift
func rollPixels(row, tmp []byte, shift int) {
	w := len(row) / 4
	if w == 0 {
		return
	}
	shift = mod(shift, w)
	if shift == 0 {
		return
	}
	copy(tmp, row)
	copy(row[shift*4:], tmp[:(w-shift)*4])
	copy(row[:shift*4], tmp[(w-shift)*4:])
}

func clamp(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
