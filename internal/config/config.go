package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// AutoSeed is the seed sentinel that resolves to the current Unix time.
const AutoSeed = "AUTO"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Video      VideoConfig     `yaml:"video"`
	Out        string          `yaml:"out"`
	Seed       string          `yaml:"seed"`
	Style      StyleConfig     `yaml:"style"`
	Overlay    OverlayConfig   `yaml:"overlay"`
	Chapters   []Chapter       `yaml:"chapters"`
	Jumpscares JumpscareConfig `yaml:"jumpscares"`
	Scrape     ScrapeConfig    `yaml:"scrape"`
	Audio      AudioConfig     `yaml:"audio"`
	Render     RenderConfig    `yaml:"render"`
	Encode     EncodeConfig    `yaml:"encode"`
	Stats      bool            `yaml:"stats"`

	// Заполняется в main, в YAML не пишется
	BuildVersion string `yaml:"-"`
	DumpTimeline bool   `yaml:"-"`
}

type VideoConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FPS       int     `yaml:"fps"`
	DurationS float64 `yaml:"duration_s"`
}

type StyleConfig struct {
	BlackWhite      bool    `yaml:"black_white"`
	Scanlines       bool    `yaml:"scanlines"`
	VHSStrength     float64 `yaml:"vhs_strength"`
	JitterStrength  float64 `yaml:"jitter_strength"`
	DropoutStrength float64 `yaml:"dropout_strength"`
	ChromaShift     int     `yaml:"chroma_shift"`
	FilmFlicker     float64 `yaml:"film_flicker"`
	PFrameSmear     float64 `yaml:"pframe_smear"`
}

type OverlayConfig struct {
	LocationPool []string `yaml:"location_pool"`
	CameraPool   []string `yaml:"camera_pool"`
	TapeIDPrefix string   `yaml:"tape_id_prefix"`
}

// Chapter is one named, duration-bounded segment of the tape.
type Chapter struct {
	Name    string  `yaml:"name"`
	Seconds float64 `yaml:"seconds"`
}

type JumpscareConfig struct {
	ProbabilityPerSecond float64 `yaml:"probability_per_second"`
	MaxEvents            int     `yaml:"max_events"`
	FlashFrames          int     `yaml:"flash_frames"`
	HoldFrames           int     `yaml:"hold_frames"`
}

type ScrapeConfig struct {
	Enabled               bool     `yaml:"enabled"`
	WikipediaLang         string   `yaml:"wikipedia_lang"`
	MaxWikiParagraphs     int      `yaml:"max_wiki_paragraphs"`
	MaxImages             int      `yaml:"max_images"`
	AllowWikimedia        bool     `yaml:"allow_wikimedia"`
	CommonsSearchFallback bool     `yaml:"commons_search_fallback"`
	TimeoutS              float64  `yaml:"timeout_s"`
	UserAgent             string   `yaml:"user_agent"`
	LocalDocuments        []string `yaml:"local_documents"`
	ImageDirs             []string `yaml:"image_dirs"`
}

type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
}

type RenderConfig struct {
	Workers       int      `yaml:"workers"`
	Zoom          float64  `yaml:"zoom"`
	FontPaths     []string `yaml:"font_paths"`
	FocusDetector string   `yaml:"focus_detector"`
}

type EncodeConfig struct {
	Encoder string `yaml:"encoder"`
	Quality int    `yaml:"quality"`
}

// FrameParams describes the raster the renderer produces.
type FrameParams struct {
	Width, Height int
	FPS           int
	TotalFrames   int
}

// Default returns the configuration used when a key is absent from the YAML file.
func Default() *Config {
	return &Config{
		Video: VideoConfig{Width: 640, Height: 480, FPS: 24, DurationS: 30},
		Out:   "out.mp4",
		Seed:  AutoSeed,
		Style: StyleConfig{
			Scanlines:       true,
			VHSStrength:     0.8,
			JitterStrength:  0.6,
			DropoutStrength: 0.5,
			ChromaShift:     1,
			FilmFlicker:     0.35,
			PFrameSmear:     0.4,
		},
		Overlay: OverlayConfig{
			LocationPool: []string{"UNKNOWN", "SITE B", "SUBLEVEL 2", "HALLWAY", "SERVICE CORRIDOR"},
			CameraPool:   []string{"CAM 1", "CAM 2", "CAM 3", "HANDHELD"},
			TapeIDPrefix: "TAPE",
		},
		Chapters: []Chapter{
			{Name: "WARNING", Seconds: 4},
			{Name: "TECHNICAL NOTES", Seconds: 4},
			{Name: "ROOM", Seconds: 6},
			{Name: "CHAPTER 2: INSPECTION", Seconds: 2},
			{Name: "ROOM", Seconds: 6},
			{Name: "ROOM", Seconds: 5},
		},
		Jumpscares: JumpscareConfig{
			ProbabilityPerSecond: 0.12,
			MaxEvents:            6,
			FlashFrames:          2,
			HoldFrames:           6,
		},
		Scrape: ScrapeConfig{
			Enabled:               true,
			WikipediaLang:         "en",
			MaxWikiParagraphs:     6,
			MaxImages:             8,
			AllowWikimedia:        true,
			CommonsSearchFallback: true,
			TimeoutS:              30,
			UserAgent:             "vhstape/1.0 (procedural archive generator)",
		},
		Audio: AudioConfig{SampleRate: 48000},
		Render: RenderConfig{
			Workers: runtime.NumCPU(),
			Zoom:    1.18,
			FontPaths: []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
				"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/Library/Fonts/Arial.ttf",
				"/System/Library/Fonts/Supplemental/Arial.ttf",
				"C:\\Windows\\Fonts\\arial.ttf",
			},
			FocusDetector: "contrast",
		},
		Encode: EncodeConfig{Encoder: "auto"},
	}
}

// Load reads a YAML file on top of Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := c.Video
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: video size %dx%d", ErrInvalid, v.Width, v.Height)
	}
	if v.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, v.FPS)
	}
	if v.DurationS <= 0 {
		return fmt.Errorf("%w: duration %.2fs", ErrInvalid, v.DurationS)
	}
	if c.Out == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalid)
	}

	strengths := map[string]float64{
		"vhs_strength":     c.Style.VHSStrength,
		"jitter_strength":  c.Style.JitterStrength,
		"dropout_strength": c.Style.DropoutStrength,
		"film_flicker":     c.Style.FilmFlicker,
		"pframe_smear":     c.Style.PFrameSmear,
	}
	for name, s := range strengths {
		if s < 0 || s > 2 {
			return fmt.Errorf("%w: style.%s=%.2f outside [0, 2]", ErrInvalid, name, s)
		}
	}
	if c.Style.ChromaShift < 0 {
		return fmt.Errorf("%w: negative chroma_shift", ErrInvalid)
	}

	j := c.Jumpscares
	if j.ProbabilityPerSecond < 0 || j.ProbabilityPerSecond > 1 {
		return fmt.Errorf("%w: jumpscares.probability_per_second=%.2f", ErrInvalid, j.ProbabilityPerSecond)
	}
	if j.MaxEvents < 0 || j.FlashFrames < 0 || j.HoldFrames < 0 {
		return fmt.Errorf("%w: negative jumpscare counts", ErrInvalid)
	}
	for i, ch := range c.Chapters {
		if ch.Seconds < 0 {
			return fmt.Errorf("%w: chapter %d (%s) has negative seconds", ErrInvalid, i, ch.Name)
		}
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrInvalid, c.Audio.SampleRate)
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = 1
	}
	if c.Render.Zoom < 1 {
		c.Render.Zoom = 1
	}
	return nil
}

// Frames returns the render raster description.
func (c *Config) Frames() FrameParams {
	return FrameParams{
		Width:       c.Video.Width,
		Height:      c.Video.Height,
		FPS:         c.Video.FPS,
		TotalFrames: TotalFrames(c.Video.DurationS, c.Video.FPS),
	}
}

// TotalFrames is duration × fps rounded to the nearest frame.
func TotalFrames(durationS float64, fps int) int {
	return int(math.Round(durationS * float64(fps)))
}

// TotalSamples is duration × rate rounded to the nearest sample.
func TotalSamples(durationS float64, rate int) int {
	return int(math.Round(durationS * float64(rate)))
}
