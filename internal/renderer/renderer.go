// Package renderer composes the tape frame by frame.
//
// Each frame index falls into one timeline segment, and the segment's
// chapter name decides what the frame shows: a warning card, a technical
// notes card, a chapter card, live footage of a scraped image, or a bare
// noise plate. The OSD, glitch text, jump-scare flash and tape degradation
// follow in that order. Frames must be produced sequentially because every
// step draws from one seeded generator and the degradation pass carries the
// previous frame.
package renderer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/ivlev/vhstape/internal/analyzer"
	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/director"
	"github.com/ivlev/vhstape/internal/effects"
	"github.com/ivlev/vhstape/internal/source"
	"github.com/ivlev/vhstape/internal/system"
	"github.com/ivlev/vhstape/internal/theme"
	"github.com/ivlev/vhstape/internal/vhs"
)

// noisePlates is how many synthetic bases replace an empty image pool
const noisePlates = 4

type chapterKind int

const (
	kindNoise chapterKind = iota
	kindWarning
	kindTechnical
	kindChapter
	kindFootage
)

// classify maps a chapter name to its visual template
func classify(name string) chapterKind {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case n == "WARNING":
		return kindWarning
	case n == "TECHNICAL NOTES":
		return kindTechnical
	case strings.HasPrefix(n, "CHAPTER"):
		return kindChapter
	case strings.HasPrefix(n, "ROOM:"), n == "CONTENT":
		return kindFootage
	default:
		return kindNoise
	}
}

type Renderer struct {
	cfg    *config.Config
	frame  config.FrameParams
	theme  *theme.Theme
	bundle *source.Bundle
	logger *slog.Logger

	rng      *rand.Rand
	fonts    *FontBook
	detector analyzer.Detector
	filter   *vhs.Filter
	gray     effects.Effect

	scenario *director.Scenario
	jumps    map[int]bool
	bases    []image.Image
	focus    map[int]focusPoint
	unit     float64
	qr       image.Image

	seg  *segmentState
	next int
	prev *image.RGBA
}

// New prepares a renderer. The image pool is decoded here, and the video
// jump-scare schedule is drawn right after the noise plates, so both are
// part of the seeded sequence.
func New(cfg *config.Config, th *theme.Theme, b *source.Bundle, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	det, err := analyzer.NewDetector(cfg.Render.FocusDetector)
	if err != nil {
		return nil, fmt.Errorf("focus detector: %w", err)
	}

	fp := cfg.Frames()
	r := &Renderer{
		cfg:      cfg,
		frame:    fp,
		theme:    th,
		bundle:   b,
		logger:   logger,
		rng:      theme.NewRand(th.RngInt),
		fonts:    NewFontBook(cfg.Render.FontPaths, logger),
		detector: det,
		filter:   vhs.New(cfg.Style),
		focus:    make(map[int]focusPoint),
		unit:     float64(fp.Height) / 720,
	}
	if cfg.Style.BlackWhite {
		r.gray = effects.Grayscale{}
	}

	r.bases = source.NewImageSource(b.Images).LoadAll(logger)
	if len(r.bases) == 0 {
		logger.Info("no usable images, using noise plates", "count", noisePlates)
		for i := 0; i < noisePlates; i++ {
			plate := image.NewRGBA(image.Rect(0, 0, fp.Width, fp.Height))
			noisePlate(plate, r.rng)
			r.bases = append(r.bases, plate)
		}
	}

	triggers := director.JumpscareFrames(r.rng, cfg.Video.DurationS, fp.FPS, cfg.Jumpscares)
	r.jumps = director.JumpscareWindows(triggers, cfg.Jumpscares, fp.TotalFrames)

	d := director.NewDirector(fp.FPS, fp.TotalFrames, th.Rooms)
	r.scenario = &director.Scenario{
		Version:      "1.0",
		Theme:        th,
		FPS:          fp.FPS,
		TotalFrames:  fp.TotalFrames,
		Timeline:     d.BuildTimeline(cfg.Chapters),
		Jumpscares:   triggers,
		Font:         r.fonts.Source(),
		ImageSources: b.ImageURLs,
	}
	return r, nil
}

// Scenario describes the resolved timeline and jump-scare schedule
func (r *Renderer) Scenario() *director.Scenario {
	return r.scenario
}

// TotalFrames is the number of frames Next will produce
func (r *Renderer) TotalFrames() int {
	return r.frame.TotalFrames
}

// Next renders the next frame in sequence. The returned image comes from
// the shared pool and belongs to the caller. ok is false after the last
// frame.
func (r *Renderer) Next() (frame *image.RGBA, index int, ok bool) {
	if r.next >= r.frame.TotalFrames {
		return nil, r.next, false
	}
	index = r.next
	r.next++

	img := r.compose(index)
	out, carry := r.filter.Apply(r.rng, img, r.prev)
	r.prev = carry
	return out, index, true
}

// Render feeds every frame to sink in order
func (r *Renderer) Render(ctx context.Context, sink FrameSink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, i, ok := r.Next()
		if !ok {
			return nil
		}
		if err := sink.WriteFrame(i, img); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
}

// compose builds frame fi up to, but not including, tape degradation
func (r *Renderer) compose(fi int) *image.RGBA {
	img := system.GetImage(image.Rect(0, 0, r.frame.Width, r.frame.Height))

	r.enterSegment(fi)
	switch r.seg.kind {
	case kindWarning, kindTechnical, kindChapter:
		r.drawCard(img)
	case kindFootage:
		r.drawFootage(img, fi)
	default:
		noisePlate(img, r.rng)
	}

	if r.gray != nil {
		r.gray.Apply(img)
	}

	r.drawOSD(img, fi)
	r.drawGlitch(img)

	if r.jumps[fi] {
		effects.NewJumpscare(r.rng).Apply(img)
	}
	return img
}

// enterSegment switches the per-chapter state when fi crosses into a new
// timeline segment
func (r *Renderer) enterSegment(fi int) {
	idx := r.scenario.Timeline.Lookup(fi)
	if r.seg != nil && r.seg.index == idx {
		return
	}

	seg := director.Segment{Start: fi, End: fi + 1, Name: "CONTENT"}
	if idx >= 0 {
		seg = r.scenario.Timeline[idx]
	}
	st := &segmentState{index: idx, seg: seg, kind: classify(seg.Name)}
	st.location = pick(r.rng, r.cfg.Overlay.LocationPool, "UNKNOWN")
	st.camera = pick(r.rng, r.cfg.Overlay.CameraPool, "CAM 1")

	switch st.kind {
	case kindWarning:
		st.title, st.lines = "WARNING", r.warningLines()
	case kindTechnical:
		st.title, st.lines = "TECHNICAL NOTES", r.technicalLines()
	case kindChapter:
		st.title, st.lines = seg.Name, r.chapterLines(seg.Name)
	case kindFootage:
		r.prepareFootage(st)
	}

	r.seg = st
	r.logger.Debug("segment", "name", seg.Name, "start", seg.Start, "end", seg.End)
}

// segmentState is what stays fixed for the length of one chapter
type segmentState struct {
	index int
	seg   director.Segment
	kind  chapterKind

	location string
	camera   string

	// cards
	title string
	lines []string

	// live footage
	fitted  *image.RGBA
	path    Path
	caption []string
	chart   []float64
	stats   []string
}

// pick returns a seeded choice from pool, or def when pool is empty
func pick(rng *rand.Rand, pool []string, def string) string {
	if len(pool) == 0 {
		return def
	}
	return pool[rng.Intn(len(pool))]
}

// randRange returns a uniform integer in [lo, hi], or lo when the range is
// empty
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// px scales a 720-line layout measure to the frame height
func (r *Renderer) px(v float64) int {
	return int(v * r.unit)
}

// noisePlate fills img with uniform gray static
func noisePlate(img *image.RGBA, rng *rand.Rand) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			v := uint8(rng.Intn(255))
			row[i], row[i+1], row[i+2], row[i+3] = v, v, v, 255
		}
	}
}
