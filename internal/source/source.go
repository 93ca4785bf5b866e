package source

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/vhstape/internal/theme"
)

// pageDPI keeps rendered document pages near frame size
const pageDPI = 72

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// DocumentProvider reads offline content from local PDF files: page text
// becomes paragraphs and page rasters become images.
type DocumentProvider struct {
	paths     []string
	maxImages int
	logger    *slog.Logger
}

func NewDocumentProvider(paths []string, maxImages int, logger *slog.Logger) *DocumentProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentProvider{paths: paths, maxImages: maxImages, logger: logger}
}

func (d *DocumentProvider) Fetch(ctx context.Context, _ *theme.Theme, workDir string) *Bundle {
	b := &Bundle{}
	dir := filepath.Join(workDir, "docs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		d.logger.Warn("document dir unavailable", "err", err)
		return b
	}

	for i, path := range d.paths {
		if ctx.Err() != nil {
			break
		}
		if err := d.readDocument(i, path, dir, b); err != nil {
			d.logger.Warn("local document skipped", "path", path, "err", err)
		}
	}
	return b
}

func (d *DocumentProvider) readDocument(docIndex int, path, dir string, b *Bundle) error {
	doc, err := fitz.New(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if meta := doc.Metadata(); meta["title"] != "" {
		title = meta["title"]
	}
	b.Titles = append(b.Titles, title)

	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			d.logger.Debug("page text failed", "path", path, "page", page, "err", err)
		} else {
			b.Paragraphs = append(b.Paragraphs, pageParagraphs(text)...)
		}

		if len(b.Images) >= d.maxImages {
			continue
		}
		img, err := doc.ImageDPI(page, pageDPI)
		if err != nil {
			d.logger.Debug("page render failed", "path", path, "page", page, "err", err)
			continue
		}
		out := filepath.Join(dir, fmt.Sprintf("doc%02d_p%03d.png", docIndex, page))
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		err = png.Encode(f, img)
		f.Close()
		if err != nil {
			return err
		}
		b.Images = append(b.Images, out)
	}
	return nil
}

// pageParagraphs joins hard-wrapped PDF lines into paragraphs split on blank lines
func pageParagraphs(text string) []string {
	var out []string
	for _, block := range blankLineRe.Split(text, -1) {
		p := NormalizeText(block)
		if len(p) > MinParagraphLen {
			out = append(out, p)
		}
	}
	return out
}
