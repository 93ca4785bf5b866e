package source

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/vhstape/internal/theme"
)

// ImageSource decodes the bundle's image files
type ImageSource struct {
	paths []string
}

func NewImageSource(paths []string) *ImageSource {
	return &ImageSource{paths: paths}
}

// NewImageDirSource lists the raster files of a directory in name order
func NewImageDirSource(dir string) (*ImageSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return &ImageSource{paths: paths}, nil
}

// ImageDirProvider contributes the raster files of local directories as
// footage. It adds no text.
type ImageDirProvider struct {
	dirs   []string
	logger *slog.Logger
}

func NewImageDirProvider(dirs []string, logger *slog.Logger) *ImageDirProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageDirProvider{dirs: dirs, logger: logger}
}

func (p *ImageDirProvider) Fetch(_ context.Context, _ *theme.Theme, _ string) *Bundle {
	b := &Bundle{}
	for _, dir := range p.dirs {
		src, err := NewImageDirSource(dir)
		if err != nil {
			p.logger.Warn("image dir skipped", "dir", dir, "err", err)
			continue
		}
		p.logger.Debug("image dir", "dir", dir, "files", src.Count())
		b.Images = append(b.Images, src.paths...)
	}
	return b
}

func (s *ImageSource) Count() int {
	return len(s.paths)
}

func (s *ImageSource) Load(index int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// LoadAll decodes every file, skipping unreadable ones. The result may be
// empty; callers substitute noise plates.
func (s *ImageSource) LoadAll(logger *slog.Logger) []image.Image {
	if logger == nil {
		logger = slog.Default()
	}
	var imgs []image.Image
	for i, p := range s.paths {
		img, err := s.Load(i)
		if err != nil {
			logger.Warn("unreadable image skipped", "path", p, "err", err)
			continue
		}
		if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
			logger.Warn("empty image skipped", "path", p)
			continue
		}
		imgs = append(imgs, img)
	}
	return imgs
}
