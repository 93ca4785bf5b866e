package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/wav"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/theme"
)

func testConfig(durationS float64, rate int) *config.Config {
	cfg := config.Default()
	cfg.Video.DurationS = durationS
	cfg.Audio.SampleRate = rate
	return cfg
}

func TestSampleCount(t *testing.T) {
	tests := []struct {
		duration float64
		rate     int
		want     int
	}{
		{2, 8000, 16000},
		{1.5, 48000, 72000},
		{0.33333, 8000, 2667},
		{0.01, 44100, 441},
	}

	th := theme.FromSeed("count")
	for _, tt := range tests {
		tr := Synthesize(testConfig(tt.duration, tt.rate), th)
		if len(tr.Samples) != tt.want {
			t.Errorf("%.5fs @ %d: got %d samples, want %d", tt.duration, tt.rate, len(tr.Samples), tt.want)
		}
	}
}

func TestSynthesizeRangeAndDeterminism(t *testing.T) {
	cfg := testConfig(3, 8000)
	cfg.Jumpscares.ProbabilityPerSecond = 1
	th := theme.FromSeed("test123")

	a := Synthesize(cfg, th)
	b := Synthesize(cfg, th)

	for i, v := range a.Samples {
		if v < -1 || v > 1 || math.IsNaN(v) {
			t.Fatalf("Sample %d out of range: %f", i, v)
		}
		if v != b.Samples[i] {
			t.Fatalf("Sample %d differs between runs", i)
		}
	}
	if len(a.Events) != 3 {
		t.Errorf("Expected one stinger per second, got %v", a.Events)
	}
}

func TestStingersRespectMaxEvents(t *testing.T) {
	for _, maxEvents := range []int{0, 1, 4} {
		cfg := testConfig(20, 8000)
		cfg.Jumpscares.ProbabilityPerSecond = 1
		cfg.Jumpscares.MaxEvents = maxEvents

		events := StingerTimes(theme.NewRand(99), cfg)
		if len(events) > maxEvents {
			t.Errorf("max=%d: got %d events", maxEvents, len(events))
		}
		for _, e := range events {
			if e < 0 || e >= cfg.Video.DurationS {
				t.Errorf("Event %.3f outside the tape", e)
			}
		}
	}
}

func TestADSR(t *testing.T) {
	env := NoteEnvelope

	t.Run("normal note", func(t *testing.T) {
		if got := env.Level(0.005, 1); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("Mid attack: got %f", got)
		}
		if got := env.Level(0.5, 1); got != env.Sustain {
			t.Errorf("Sustain: got %f", got)
		}
		if got := env.Level(1, 1); got != 0 {
			t.Errorf("After end: got %f", got)
		}
	})

	t.Run("short notes", func(t *testing.T) {
		for _, dur := range []float64{0, 0.005, 0.1, 0.3, 0.4} {
			if hold := env.SustainTime(dur); hold != 0 {
				t.Errorf("dur=%.3f: sustain %f, want 0", dur, hold)
			}
			for k := 0; k <= 100; k++ {
				v := env.Level(dur*float64(k)/100, dur)
				if v < 0 || v > 1 || math.IsNaN(v) {
					t.Fatalf("dur=%.3f: level %f out of range", dur, v)
				}
			}
		}
	})
}

func TestWriteWAV(t *testing.T) {
	tr := Synthesize(testConfig(0.5, 8000), theme.FromSeed("wav"))
	path := filepath.Join(t.TempDir(), "audio.wav")

	if err := WriteWAV(path, tr); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer stream.Close()

	if format.NumChannels != 1 || format.Precision != 2 || int(format.SampleRate) != 8000 {
		t.Errorf("Unexpected format %+v", format)
	}
	if stream.Len() != len(tr.Samples) {
		t.Errorf("Decoded %d samples, want %d", stream.Len(), len(tr.Samples))
	}
}
