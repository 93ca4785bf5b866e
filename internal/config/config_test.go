package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
video:
  width: 320
  fps: 10
seed: test123
style:
  black_white: true
chapters:
  - name: WARNING
    seconds: 2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Video.Width != 320 || cfg.Video.FPS != 10 {
		t.Errorf("Expected overrides 320@10, got %d@%d", cfg.Video.Width, cfg.Video.FPS)
	}
	if cfg.Video.Height != 480 {
		t.Errorf("Expected default height 480, got %d", cfg.Video.Height)
	}
	if cfg.Seed != "test123" {
		t.Errorf("Expected seed test123, got %s", cfg.Seed)
	}
	if !cfg.Style.BlackWhite || !cfg.Style.Scanlines {
		t.Errorf("Expected black_white and default scanlines, got %+v", cfg.Style)
	}
	if len(cfg.Chapters) != 1 {
		t.Errorf("Expected chapter list replaced, got %d chapters", len(cfg.Chapters))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Video.Width = 0 }},
		{"zero fps", func(c *Config) { c.Video.FPS = 0 }},
		{"negative duration", func(c *Config) { c.Video.DurationS = -1 }},
		{"strength too high", func(c *Config) { c.Style.VHSStrength = 3 }},
		{"negative chroma", func(c *Config) { c.Style.ChromaShift = -2 }},
		{"probability", func(c *Config) { c.Jumpscares.ProbabilityPerSecond = 1.5 }},
		{"negative chapter", func(c *Config) { c.Chapters = []Chapter{{Name: "X", Seconds: -1}} }},
		{"empty out", func(c *Config) { c.Out = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestTotals(t *testing.T) {
	if n := TotalFrames(2, 10); n != 20 {
		t.Errorf("Expected 20 frames, got %d", n)
	}
	if n := TotalSamples(1.5, 48000); n != 72000 {
		t.Errorf("Expected 72000 samples, got %d", n)
	}
	if n := TotalSamples(0.33333, 3); n != 1 {
		t.Errorf("Expected rounding to 1 sample, got %d", n)
	}
}
