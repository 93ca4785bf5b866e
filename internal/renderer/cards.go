package renderer

import (
	"fmt"
	"image"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

const maxCardLines = 14

var decodeModes = []string{
	"FIELD SYNC / RF RECOVERY",
	"CHROMA TRAP / HEAD SWITCH",
	"TBC BYPASS / SYNC STRIP",
	"LUMA ONLY / DROPOUT COMP",
}

func (r *Renderer) tapeLabel() string {
	prefix := r.cfg.Overlay.TapeIDPrefix
	if prefix == "" {
		prefix = "TAPE"
	}
	return fmt.Sprintf("%s-%04d", prefix, r.theme.TapeID())
}

func (r *Renderer) warningLines() []string {
	return []string{
		"THIS RECORDING CONTAINS UNVERIFIED MATERIAL",
		"PLAYBACK MAY INDUCE DISORIENTATION",
		"TAPE ID: " + r.tapeLabel(),
		"SEED: " + r.theme.Seed,
		"SOURCE: CONSUMER VHS / SP MODE",
		"NOTE: DO NOT PAUSE ON ARTIFACTS",
	}
}

func (r *Renderer) technicalLines() []string {
	primary := "UNKNOWN"
	if len(r.bundle.Titles) > 0 {
		primary = r.bundle.Titles[0]
	}
	lines := []string{
		"ANCHOR: " + strings.ToUpper(r.theme.Anchor),
		"PRIMARY: " + primary,
		"DECODE: " + decodeModes[r.rng.Intn(len(decodeModes))],
		"STATUS: PARTIAL LOCK",
		"",
	}
	tech := r.bundle.TechLines
	if len(tech) > 10 {
		tech = tech[:10]
	}
	return append(lines, tech...)
}

func (r *Renderer) chapterLines(name string) []string {
	return []string{
		"ANCHOR: " + strings.ToUpper(r.theme.Anchor),
		"MODULE: " + name,
		fmt.Sprintf("DRIFT: %d%%", randRange(r.rng, 2, 19)),
		fmt.Sprintf("DROP RATE: %d%%", randRange(r.rng, 1, 13)),
		fmt.Sprintf("CRC: %d", randRange(r.rng, 100000, 999999)),
		"FIELD: INTERLACED",
		"AUDIO: LINEAR",
		"NOTES: LOCALIZED NOISE PRESENT",
	}
}

// drawCard renders the current segment's title card with a few faint
// horizontal strokes that change every frame
func (r *Renderer) drawCard(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	fill(img, colBlack)

	drawTextTop(img, r.fonts.Face(44*r.unit), r.px(60), r.px(90), r.seg.title, colBright)

	body := r.fonts.Face(22 * r.unit)
	y := r.px(170)
	for i, ln := range r.seg.lines {
		if i >= maxCardLines {
			break
		}
		drawTextTop(img, body, r.px(60), y, ln, colBody)
		y += r.px(30)
	}

	if r.seg.kind == kindWarning {
		r.drawTapeQR(img)
	}

	for i := 0; i < 20; i++ {
		if r.rng.Float64() >= 0.35 {
			continue
		}
		x := randRange(r.rng, 30, w-30)
		y := randRange(r.rng, 20, h-20)
		l := randRange(r.rng, 20, 120)
		line(img, float32(x), float32(y)+0.5, float32(x+r.px(float64(l))), float32(y)+0.5, 1, colStroke)
	}
}

// drawTapeQR stamps the tape label as a QR code in the top right corner
func (r *Renderer) drawTapeQR(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	size := min(w, h) / 4
	if size < 21 {
		return
	}
	if r.qr == nil {
		q, err := qrcode.New(r.tapeLabel()+" / SEED "+r.theme.Seed, qrcode.Medium)
		if err != nil {
			r.logger.Warn("tape label QR failed", "err", err)
			r.qr = image.NewRGBA(image.Rectangle{})
			return
		}
		r.qr = q.Image(size)
	}
	b := r.qr.Bounds()
	at := image.Pt(w-b.Dx()-r.px(40), r.px(60))
	draw.Draw(img, b.Sub(b.Min).Add(at), r.qr, b.Min, draw.Src)
}
