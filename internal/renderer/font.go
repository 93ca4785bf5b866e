package renderer

import (
	"log/slog"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

const (
	blockRune    = '█'
	fallbackMask = '#'
)

// FontBook hands out faces by pixel size. It tries the configured font
// files in order, then the embedded Go Mono, then the fixed 7x13 bitmap
// face. Faces are cached and not safe for concurrent use.
type FontBook struct {
	font   *sfnt.Font
	source string
	redact rune
	faces  map[int]font.Face
}

func NewFontBook(paths []string, logger *slog.Logger) *FontBook {
	if logger == nil {
		logger = slog.Default()
	}
	fb := &FontBook{faces: make(map[int]font.Face)}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			logger.Warn("font parse failed", "path", p, "err", err)
			continue
		}
		fb.font, fb.source = f, p
		break
	}

	if fb.font == nil {
		logger.Warn("no configured font found, using embedded Go Mono", "candidates", len(paths))
		f, err := opentype.Parse(gomono.TTF)
		if err != nil {
			logger.Warn("embedded font unavailable, using bitmap face", "err", err)
			fb.source = "basicfont"
			fb.redact = bitmapRedaction()
			return fb
		}
		fb.font, fb.source = f, "gomono"
	}

	fb.redact = fallbackMask
	var buf sfnt.Buffer
	if idx, err := fb.font.GlyphIndex(&buf, blockRune); err == nil && idx != 0 {
		fb.redact = blockRune
	}
	logger.Debug("font selected", "source", fb.source, "redaction", string(fb.redact))
	return fb
}

// Source names the font in use: a file path, "gomono" or "basicfont"
func (fb *FontBook) Source() string {
	return fb.source
}

// Face returns a face of roughly size pixels
func (fb *FontBook) Face(size float64) font.Face {
	px := max(6, int(math.Round(size)))
	if f, ok := fb.faces[px]; ok {
		return f
	}

	var face font.Face = basicfont.Face7x13
	if fb.font != nil {
		f, err := opentype.NewFace(fb.font, &opentype.FaceOptions{
			Size:    float64(px),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			face = f
		}
	}
	fb.faces[px] = face
	return face
}

// RedactionRune is a full block when the font has one, '#' otherwise
func (fb *FontBook) RedactionRune() rune {
	return fb.redact
}

func bitmapRedaction() rune {
	for _, rg := range basicfont.Face7x13.Ranges {
		if blockRune >= rg.Low && blockRune < rg.High {
			return blockRune
		}
	}
	return fallbackMask
}
