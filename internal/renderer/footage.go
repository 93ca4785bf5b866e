package renderer

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"

	"github.com/ivlev/vhstape/internal/analyzer"
)

const (
	captionBar  = 140 // px at 720 lines
	chartPoints = 32
	redactProb  = 0.18
	tagProb     = 0.3
)

var corners = [][2]float64{{0.3, 0.3}, {0.7, 0.3}, {0.3, 0.7}, {0.7, 0.7}}

type focusPoint struct {
	x, y float64
	ok   bool
}

// letterbox scales src to fit dst keeping its aspect ratio, centred on
// black. It returns where the picture landed.
func letterbox(dst *image.RGBA, src image.Image) image.Rectangle {
	fill(dst, colBlack)
	sb := src.Bounds()
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	scale := math.Min(float64(w)/float64(sb.Dx()), float64(h)/float64(sb.Dy()))
	tw := max(1, int(math.Round(float64(sb.Dx())*scale)))
	th := max(1, int(math.Round(float64(sb.Dy())*scale)))

	at := image.Rect((w-tw)/2, (h-th)/2, (w-tw)/2+tw, (h-th)/2+th)
	draw.BiLinear.Scale(dst, at, src, sb, draw.Src, nil)
	return at
}

// prepareFootage picks the source image and camera path for a live
// footage chapter
func (r *Renderer) prepareFootage(st *segmentState) {
	bi := r.rng.Intn(len(r.bases))
	base := r.bases[bi]

	st.fitted = image.NewRGBA(image.Rect(0, 0, r.frame.Width, r.frame.Height))
	at := letterbox(st.fitted, base)

	fp, seen := r.focus[bi]
	if !seen {
		fp.x, fp.y, fp.ok = analyzer.FocusPoint(r.detector, base)
		r.focus[bi] = fp
	}
	fx, fy := fp.x, fp.y
	if !fp.ok {
		c := corners[r.rng.Intn(len(corners))]
		fx, fy = c[0], c[1]
	}
	// source fractions -> frame fractions
	fx = (float64(at.Min.X) + fx*float64(at.Dx())) / float64(r.frame.Width)
	fy = (float64(at.Min.Y) + fy*float64(at.Dy())) / float64(r.frame.Height)
	st.path = KenBurns(fx, fy, r.cfg.Render.Zoom)

	st.chart = make([]float64, chartPoints)
	v := r.rng.Float64()
	for i := range st.chart {
		v = math.Min(1, math.Max(0, v+(r.rng.Float64()-0.5)*0.35))
		st.chart[i] = v
	}
	st.stats = []string{
		fmt.Sprintf("PEAK -%02d dB", randRange(r.rng, 3, 40)),
		fmt.Sprintf("SNR %.1f", 12+r.rng.Float64()*30),
		fmt.Sprintf("LOCK %d%%", randRange(r.rng, 40, 99)),
	}
}

func (r *Renderer) drawFootage(img *image.RGBA, fi int) {
	st := r.seg
	cam := st.path.At(st.seg.Progress(fi))
	draw.ApproxBiLinear.Scale(img, img.Rect, st.fitted, cam.Crop(st.fitted.Rect), draw.Src, nil)

	if (fi-st.seg.Start)%r.frame.FPS == 0 || st.caption == nil {
		st.caption = r.captionLines()
	}

	r.drawChart(img, fi)
	r.drawCaption(img)
}

// captionLines builds the four redacted lines of the caption bar
func (r *Renderer) captionLines() []string {
	paras := r.bundle.Paragraphs
	if len(paras) == 0 {
		paras = []string{"The signal persists. The record continues. The room remains present."}
	}
	p := paras[r.rng.Intn(len(paras))]

	words := strings.Fields(p)
	r.rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	ln1 := strings.Join(words[:min(10, len(words))], " ")
	ln2 := truncateRunes(p, 120)
	ln3 := fmt.Sprintf("ANCHOR %s / INDEX %d", strings.ToUpper(r.theme.Keyword), randRange(r.rng, 10, 99))
	ln4 := "SYNC ACTIVE / NOISE FLOOR RISING"
	if tech := r.bundle.TechLines; len(tech) > 0 {
		ln4 = tech[r.rng.Intn(len(tech))]
	}

	mask := r.fonts.RedactionRune()
	return []string{
		redact(r.rng, ln1, mask),
		redact(r.rng, ln2, mask),
		ln3,
		redact(r.rng, ln4, mask),
	}
}

// redact blacks out words with a seeded probability and sometimes prefixes
// a bracketed tag number
func redact(rng *rand.Rand, s string, mask rune) string {
	words := strings.Fields(s)
	for i, w := range words {
		if rng.Float64() < redactProb {
			words[i] = strings.Repeat(string(mask), utf8.RuneCountInString(w))
		}
	}
	out := strings.Join(words, " ")
	if rng.Float64() < tagProb {
		out = fmt.Sprintf("[%03d] %s", rng.Intn(1000), out)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (r *Renderer) drawCaption(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	barH := r.px(captionBar)
	fillRect(img, image.Rect(0, h-barH, w, h), colBlack)
	fillRect(img, image.Rect(0, h-barH, w, h-barH+max(1, r.px(2))), colRule)

	face := r.fonts.Face(22 * r.unit)
	y := h - barH + r.px(18)
	for _, ln := range r.seg.caption {
		drawTextTop(img, face, r.px(38), y, ln, colBright)
		y += r.px(28)
	}

	label := r.seg.seg.Name
	if r.seg.seg.Note != "" {
		label += " / " + strings.ToUpper(r.seg.seg.Note)
	}
	small := r.fonts.Face(14 * r.unit)
	drawTextTop(img, small, w-textWidth(small, label)-r.px(38), h-barH+r.px(6), label, colBody)
}

// drawChart draws the diagnostic panel: a scrolling polyline between fixed
// axes with a few stat strings underneath
func (r *Renderer) drawChart(img *image.RGBA, fi int) {
	w := img.Rect.Dx()
	pw, ph := w/4, img.Rect.Dy()/6
	if pw < 16 || ph < 12 {
		return
	}
	x0, y0 := w-pw-r.px(24), r.px(70)
	panel := image.Rect(x0, y0, x0+pw, y0+ph)
	fillRect(img, panel, colBlack)
	strokeRect(img, panel, 1, colBorder)

	pad := float32(max(3, r.px(10)))
	left, right := float32(x0)+pad, float32(x0+pw)-pad
	top, bottom := float32(y0)+pad, float32(y0+ph)-pad
	line(img, left, top, left, bottom, 1, colRule)
	line(img, left, bottom, right, bottom, 1, colRule)

	small := r.fonts.Face(14 * r.unit)
	drawTextTop(img, small, x0+2, y0+2, "SIG", colBody)
	drawText(img, small, int(right)-textWidth(small, "T"), y0+ph-2, "T", colBody)

	n := len(r.seg.chart)
	off := (fi - r.seg.seg.Start) % n
	pts := make([]vec, n)
	for i := range pts {
		v := float32(r.seg.chart[(i+off)%n])
		pts[i] = vec{
			x: left + (right-left)*float32(i)/float32(n-1),
			y: bottom - (bottom-top)*v,
		}
	}
	polyline(img, pts, max(1, float32(r.unit)*2), colBright)

	y := y0 + ph + r.px(6)
	for _, s := range r.seg.stats {
		drawTextTop(img, small, x0, y, s, colBody)
		y += r.px(18)
	}
}
