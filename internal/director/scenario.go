package director

import "github.com/ivlev/vhstape/internal/theme"

// Scenario is the resolved plan of a tape, dumped as YAML for inspection
type Scenario struct {
	Version     string       `yaml:"version"`
	Theme       *theme.Theme `yaml:"theme"`
	FPS         int          `yaml:"fps"`
	TotalFrames int          `yaml:"total_frames"`
	Timeline    Timeline     `yaml:"timeline"`
	Jumpscares  []int        `yaml:"jumpscare_frames"`

	Font         string   `yaml:"font"`
	ImageSources []string `yaml:"image_sources,omitempty"` // original URLs of downloaded footage
}

// Timeline is an ordered, gapless cover of [0, total_frames)
type Timeline []Segment

// Segment is one chapter of the timeline
type Segment struct {
	Start int    `yaml:"start"` // inclusive
	End   int    `yaml:"end"`   // exclusive
	Name  string `yaml:"name"`
	Note  string `yaml:"note,omitempty"` // room ambiance note
}

// Len returns the segment length in frames
func (s Segment) Len() int {
	return s.End - s.Start
}

// Progress returns the chapter-local position of frame in [0, 1]
func (s Segment) Progress(frame int) float64 {
	if s.Len() <= 1 {
		return 0
	}
	p := float64(frame-s.Start) / float64(s.Len()-1)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Lookup returns the index of the segment containing frame, or -1
func (t Timeline) Lookup(frame int) int {
	lo, hi := 0, len(t)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case frame < t[mid].Start:
			hi = mid - 1
		case frame >= t[mid].End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}
