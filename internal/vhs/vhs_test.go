package vhs

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/ivlev/vhstape/internal/config"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 128, 255})
		}
	}
	return img
}

func TestApplyKeepsShape(t *testing.T) {
	f := New(config.Default().Style)
	rng := rand.New(rand.NewSource(7))

	cur := gradient(64, 48)
	out, carry := f.Apply(rng, cur, nil)

	if out.Rect != image.Rect(0, 0, 64, 48) || carry.Rect != out.Rect {
		t.Fatalf("Shape changed: out %v carry %v", out.Rect, carry.Rect)
	}
	if !bytes.Equal(out.Pix, carry.Pix) {
		t.Errorf("Carry must equal the degraded frame")
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("Alpha changed at %d: %d", i, out.Pix[i])
		}
	}

	// second frame reuses the carry buffer
	next, carry2 := f.Apply(rng, gradient(64, 48), carry)
	if carry2 != carry {
		t.Errorf("Carry buffer was not reused")
	}
	if !bytes.Equal(next.Pix, carry2.Pix) {
		t.Errorf("Carry must track the latest frame")
	}
}

func TestApplyDeterministic(t *testing.T) {
	f := New(config.Default().Style)

	run := func() []byte {
		rng := rand.New(rand.NewSource(42))
		var prev *image.RGBA
		var out *image.RGBA
		for i := 0; i < 3; i++ {
			out, prev = f.Apply(rng, gradient(32, 24), prev)
		}
		return append([]byte(nil), out.Pix...)
	}

	if !bytes.Equal(run(), run()) {
		t.Error("Same seed produced different frames")
	}
}

func TestSmearSkipsFirstFrame(t *testing.T) {
	cur := gradient(16, 16)
	before := append([]byte(nil), cur.Pix...)
	rng := rand.New(rand.NewSource(1))

	Smear(cur, nil, 1, rng)
	if !bytes.Equal(before, cur.Pix) {
		t.Error("Smear without a previous frame must be a no-op")
	}

	prev := image.NewRGBA(cur.Rect)
	Smear(cur, prev, 0, rng)
	if !bytes.Equal(before, cur.Pix) {
		t.Error("Smear with zero strength must be a no-op")
	}

	Smear(cur, prev, 1, rng)
	if bytes.Equal(before, cur.Pix) {
		t.Error("Smear toward a black frame should darken some blocks")
	}
}

func TestChromaShiftRollsChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	for x := 0; x < 4; x++ {
		img.SetRGBA(x, 0, color.RGBA{uint8(10 * (x + 1)), 7, uint8(100 + x), 255})
	}

	ChromaShift(img, 1)

	wantR := []uint8{40, 10, 20, 30}
	wantB := []uint8{101, 102, 103, 100}
	for x := 0; x < 4; x++ {
		c := img.RGBAAt(x, 0)
		if c.R != wantR[x] || c.B != wantB[x] || c.G != 7 {
			t.Errorf("x=%d: got %v, want R=%d B=%d G=7", x, c, wantR[x], wantB[x])
		}
	}
}

func TestScanlinesDarkenEvenRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	Scanlines(img, 1)

	even, odd := img.RGBAAt(0, 0), img.RGBAAt(0, 1)
	if even.R >= odd.R {
		t.Errorf("Even row %d should be darker than odd row %d", even.R, odd.R)
	}
	if even.A != 200 {
		t.Errorf("Alpha must be untouched, got %d", even.A)
	}
}

func TestRollPixels(t *testing.T) {
	row := []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}
	tmp := make([]byte, len(row))

	rollPixels(row, tmp, -1)

	want := []byte{2, 2, 2, 2, 3, 3, 3, 3, 1, 1, 1, 1}
	if !bytes.Equal(row, want) {
		t.Errorf("got %v, want %v", row, want)
	}
}
