package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/director"
	"github.com/ivlev/vhstape/internal/source"
	"github.com/ivlev/vhstape/internal/video"
)

type fakeEncoder struct {
	frames  int
	wavSize int64
	failMux bool
}

func (f *fakeEncoder) EncodeFrames(_ context.Context, pattern string, fps, width, height int, out string) error {
	entries, err := os.ReadDir(filepath.Dir(pattern))
	if err != nil {
		return err
	}
	f.frames = len(entries)
	return os.WriteFile(out, []byte("silent"), 0644)
}

func (f *fakeEncoder) Mux(_ context.Context, videoPath, wavPath, out string) error {
	if f.failMux {
		return errors.Join(video.ErrEncode, errors.New("muxer exploded"))
	}
	st, err := os.Stat(wavPath)
	if err != nil {
		return err
	}
	f.wavSize = st.Size()
	return os.WriteFile(out, []byte("final"), 0644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Video = config.VideoConfig{Width: 64, Height: 48, FPS: 5, DurationS: 2}
	cfg.Seed = "test123"
	cfg.Out = filepath.Join(t.TempDir(), "nested", "out.mp4")
	cfg.Scrape.Enabled = false
	cfg.Audio.SampleRate = 8000
	cfg.Render.Workers = 2
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestProject(t *testing.T, cfg *config.Config, enc video.VideoEncoder) *VideoProject {
	t.Helper()
	p := NewVideoProject(cfg, &source.FallbackProvider{MaxParagraphs: 4}, enc, nil)
	p.BenchmarkLog = filepath.Join(t.TempDir(), "benchmark.log")
	return p
}

func TestRunProducesOutput(t *testing.T) {
	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)

	cfg := testConfig(t)
	cfg.DumpTimeline = true
	enc := &fakeEncoder{}

	if err := newTestProject(t, cfg, enc).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if enc.frames != 10 {
		t.Errorf("Expected 10 frames handed to the encoder, got %d", enc.frames)
	}
	// 16-bit mono, 2 s at 8 kHz plus the header
	if enc.wavSize < 2*8000*2 {
		t.Errorf("WAV too small: %d bytes", enc.wavSize)
	}

	data, err := os.ReadFile(cfg.Out)
	if err != nil || string(data) != "final" {
		t.Fatalf("Unexpected output %q (%v)", data, err)
	}

	sc, err := director.ReadScenario(director.ScenarioPath(cfg.Out))
	if err != nil {
		t.Fatalf("Timeline dump missing: %v", err)
	}
	if sc.TotalFrames != 10 || sc.Theme.Seed != "test123" || sc.Font == "" {
		t.Errorf("Unexpected dump: frames=%d seed=%s", sc.TotalFrames, sc.Theme.Seed)
	}

	left, _ := os.ReadDir(tmpRoot)
	if len(left) != 0 {
		t.Errorf("Temp scope not cleaned: %d entries left", len(left))
	}
}

func TestRunEncodeFailure(t *testing.T) {
	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)

	cfg := testConfig(t)
	cfg.DumpTimeline = true
	err := newTestProject(t, cfg, &fakeEncoder{failMux: true}).Run(context.Background())
	if !errors.Is(err, video.ErrEncode) {
		t.Fatalf("Expected ErrEncode, got %v", err)
	}
	if !strings.Contains(err.Error(), "muxer exploded") {
		t.Errorf("Encoder output lost from error: %v", err)
	}
	if _, err := os.Stat(cfg.Out); !os.IsNotExist(err) {
		t.Errorf("Partial output left at %s", cfg.Out)
	}
	if _, err := os.Stat(director.ScenarioPath(cfg.Out)); !os.IsNotExist(err) {
		t.Errorf("Timeline dump written for a failed run")
	}

	left, _ := os.ReadDir(tmpRoot)
	if len(left) != 0 {
		t.Errorf("Temp scope not cleaned after failure: %d entries left", len(left))
	}
}

func TestRunStatsReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stats = true
	cfg.BuildVersion = "test"
	p := newTestProject(t, cfg, &fakeEncoder{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, err := os.ReadFile(p.BenchmarkLog)
	if err != nil {
		t.Fatalf("benchmark log missing: %v", err)
	}
	line := string(data)
	for _, want := range []string{"Build: test", "Seed: test123", "Frames: 10"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	dst := filepath.Join(dir, "sub", "b.bin")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := moveFile(src, dst); err != nil {
		t.Fatalf("moveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Source still present after move")
	}
	if data, _ := os.ReadFile(dst); string(data) != "x" {
		t.Errorf("Unexpected content %q", data)
	}
}
