package source

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/theme"
)

// Bundle is the text and image material a tape is built from
type Bundle struct {
	Titles     []string `yaml:"titles"`
	Paragraphs []string `yaml:"paragraphs"`
	Images     []string `yaml:"images"` // local file paths, may be empty
	ImageURLs  []string `yaml:"image_urls,omitempty"`
	TechLines  []string `yaml:"tech_lines"`
}

// ContentProvider supplies a bundle for a theme. Implementations never fail:
// errors degrade to fallback content.
type ContentProvider interface {
	Fetch(ctx context.Context, th *theme.Theme, workDir string) *Bundle
}

// MinParagraphLen drops captions and headings from extracted text
const MinParagraphLen = 80

var (
	FallbackTitles = []string{"Noise (electronics)", "Shortwave radio", "Television"}

	FallbackParagraphs = []string{
		"The signal persists. The record continues. The room remains present. Playback of this segment was interrupted several times by the operator.",
		"Recovered footage from a consumer cassette found in storage. The label was water damaged and the housing had been opened and resealed at least once.",
		"Field notes describe a low continuous tone audible near the recording site. Attempts to locate the source with portable equipment were unsuccessful.",
		"The technician reported that the tape could not be copied cleanly. Each duplicate showed the same dropouts at different positions on the reel.",
	}
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace and trims the result
func NormalizeText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// PickParagraphs splits an extract into lines and keeps at most max of
// the long ones
func PickParagraphs(extract string, max int) []string {
	var out []string
	if max <= 0 {
		return out
	}
	for _, p := range strings.Split(extract, "\n") {
		p = strings.TrimSpace(p)
		if len(p) <= MinParagraphLen {
			continue
		}
		out = append(out, NormalizeText(p))
		if len(out) >= max {
			break
		}
	}
	return out
}

// TechLines generates the seeded technical metadata lines
func TechLines(rng *rand.Rand, keyword string, n int) []string {
	lines := make([]string, 0, n)
	kw := strings.ToUpper(keyword)
	for i := 0; i < n; i++ {
		code := 100 + rng.Intn(900)
		hz := 2000 + rng.Intn(16001)
		sum := 100000 + rng.Intn(900000)
		lines = append(lines, fmt.Sprintf("%s-%d / CARRIER %dHz / CHECKSUM %d", kw, code, hz, sum))
	}
	return lines
}

// Finalize guarantees the bundle invariants: titles, paragraphs and tech
// lines are never empty; paragraphs are capped at maxParagraphs.
func Finalize(b *Bundle, th *theme.Theme, rng *rand.Rand, maxParagraphs int) *Bundle {
	if b == nil {
		b = &Bundle{}
	}
	if len(b.Titles) == 0 {
		b.Titles = append([]string(nil), FallbackTitles...)
	}
	if maxParagraphs > 0 && len(b.Paragraphs) > maxParagraphs {
		b.Paragraphs = b.Paragraphs[:maxParagraphs]
	}
	if len(b.Paragraphs) == 0 {
		b.Paragraphs = append([]string(nil), FallbackParagraphs...)
	}
	if len(b.TechLines) == 0 {
		b.TechLines = TechLines(rng, th.Keyword, 12)
	}
	return b
}

// FallbackProvider returns built-in content only
type FallbackProvider struct {
	MaxParagraphs int
}

func (p *FallbackProvider) Fetch(_ context.Context, th *theme.Theme, _ string) *Bundle {
	return Finalize(nil, th, theme.NewRand(th.RngInt), p.MaxParagraphs)
}

// Chain merges the output of several providers in order and finalizes it
type Chain struct {
	Providers []ContentProvider
	Cfg       config.ScrapeConfig
	Logger    *slog.Logger
}

// NewProvider builds the provider chain for a scrape config
func NewProvider(cfg config.ScrapeConfig, logger *slog.Logger) ContentProvider {
	if logger == nil {
		logger = slog.Default()
	}
	var providers []ContentProvider
	if len(cfg.LocalDocuments) > 0 {
		providers = append(providers, NewDocumentProvider(cfg.LocalDocuments, cfg.MaxImages, logger))
	}
	if len(cfg.ImageDirs) > 0 {
		providers = append(providers, NewImageDirProvider(cfg.ImageDirs, logger))
	}
	if cfg.Enabled {
		providers = append(providers, NewWikiProvider(cfg, logger))
	}
	return &Chain{Providers: providers, Cfg: cfg, Logger: logger}
}

func (c *Chain) Fetch(ctx context.Context, th *theme.Theme, workDir string) *Bundle {
	merged := &Bundle{}
	for _, p := range c.Providers {
		b := p.Fetch(ctx, th, workDir)
		if b == nil {
			continue
		}
		merged.Titles = append(merged.Titles, b.Titles...)
		merged.Paragraphs = append(merged.Paragraphs, b.Paragraphs...)
		merged.ImageURLs = append(merged.ImageURLs, b.ImageURLs...)
		for _, img := range b.Images {
			if len(merged.Images) >= c.Cfg.MaxImages {
				break
			}
			merged.Images = append(merged.Images, img)
		}
		merged.TechLines = append(merged.TechLines, b.TechLines...)
	}

	// max_wiki_paragraphs is applied per title by the providers
	out := Finalize(merged, th, theme.NewRand(th.RngInt), 0)
	c.Logger.Info("content bundle ready",
		"titles", len(out.Titles),
		"paragraphs", len(out.Paragraphs),
		"images", len(out.Images),
		"tech_lines", len(out.TechLines))
	return out
}
