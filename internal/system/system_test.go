package system

import (
	"context"
	"image"
	"strings"
	"testing"
)

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		listing string
		want    string
	}{
		{" V....D h264_videotoolbox    VideoToolbox H.264 Encoder", "h264_videotoolbox"},
		{" V....D h264_nvenc           NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D libx264              libx264 H.264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.listing); got != tt.want {
			t.Errorf("pickEncoder(%q) = %s, want %s", tt.listing, got, tt.want)
		}
	}
}

func TestDefaultQuality(t *testing.T) {
	if DefaultQuality("h264_videotoolbox") != 75 || DefaultQuality("h264_nvenc") != 28 || DefaultQuality("libx264") != 23 {
		t.Error("Unexpected default quality mapping")
	}
}

func TestImagePool(t *testing.T) {
	p := &ImagePool{}
	rect := image.Rect(0, 0, 8, 4)

	img := p.Get(rect)
	if img.Rect != rect || len(img.Pix) != 8*4*4 {
		t.Fatalf("Unexpected image %v (%d bytes)", img.Rect, len(img.Pix))
	}
	p.Put(img)
	p.Put(nil)

	other := p.Get(image.Rect(0, 0, 2, 2))
	if other.Rect.Dx() != 2 {
		t.Errorf("Pool mixed up sizes: %v", other.Rect)
	}
	if p.fresh.Load() < 2 {
		t.Errorf("Expected at least 2 allocations, got %d", p.fresh.Load())
	}
}

func TestSnapshot(t *testing.T) {
	s := Snapshot(context.Background())
	if s.Goroutines < 1 {
		t.Errorf("Goroutine count missing: %+v", s)
	}
	if !strings.Contains(s.String(), "RSS") {
		t.Errorf("Unexpected report line %q", s.String())
	}
}
