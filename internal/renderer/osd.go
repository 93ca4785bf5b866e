package renderer

import (
	"fmt"
	"image"
	"math"
)

var glitchMessages = []string{
	"ERROR: DROP FRAME",
	"SYNC LOST",
	"HEAD CLOG DETECTED",
	"RF INTERFERENCE",
	"TRACKING MISALIGN",
	"CARRIER DRIFT",
	"FIELD ORDER SWAP",
}

const glitchProb = 0.22

// Timecode formats a frame index as HH:MM:SS:FF
func Timecode(frame, fps int) string {
	secs := frame / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60, frame%fps)
}

// Tracking is the oscillating TRK counter, between 20 and 60
func Tracking(frame int) int {
	return 20 + int(40*(0.5+0.5*math.Sin(float64(frame)*0.03)))
}

// drawOSD burns in the camcorder display: REC, camera, timecode, date and
// location, tracking and a thin border
func (r *Renderer) drawOSD(img *image.RGBA, fi int) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	small := r.fonts.Face(18 * r.unit)
	med := r.fonts.Face(22 * r.unit)
	big := r.fonts.Face(28 * r.unit)

	drawTextTop(img, big, r.px(28), r.px(20), "REC", colBright)
	disc(img, float32(16*r.unit), float32(32*r.unit), float32(max(1.5, 6*r.unit)), colBright)
	drawTextTop(img, small, r.px(28)+textWidth(big, "REC")+r.px(16), r.px(26), r.seg.camera, colBody)

	drawTextTop(img, med, w-r.px(220), r.px(22), Timecode(fi, r.frame.FPS), colBright)

	day, month, year := r.theme.Date()
	stamp := fmt.Sprintf("%02d.%02d.%04d  %s", day, month, year, r.seg.location)
	drawTextTop(img, small, r.px(28), h-r.px(54), stamp, colBright)

	drawTextTop(img, small, w-r.px(310), h-r.px(54), fmt.Sprintf("TRK %02d  SP", Tracking(fi)), colBright)

	m := r.px(6)
	strokeRect(img, image.Rect(m, m, w-m, h-m), max(1, r.px(2)), colBorder)
}

// drawGlitch occasionally prints one tape error message at a random spot
func (r *Renderer) drawGlitch(img *image.RGBA) {
	if r.rng.Float64() >= glitchProb {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	msg := glitchMessages[r.rng.Intn(len(glitchMessages))]
	x := randRange(r.rng, r.px(40), w-r.px(340))
	y := randRange(r.rng, r.px(80), h-r.px(120))
	drawTextTop(img, r.fonts.Face(20*r.unit), x, y, msg, colBright)
}
