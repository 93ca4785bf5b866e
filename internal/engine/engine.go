package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/vhstape/internal/audio"
	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/director"
	"github.com/ivlev/vhstape/internal/renderer"
	"github.com/ivlev/vhstape/internal/source"
	"github.com/ivlev/vhstape/internal/system"
	"github.com/ivlev/vhstape/internal/theme"
	"github.com/ivlev/vhstape/internal/video"
)

// ErrMissingOutput - пайплайн завершился, но итогового файла нет
var ErrMissingOutput = errors.New("output video was not created")

const DefaultBenchmarkLog = "benchmark.log"

type VideoProject struct {
	Config   *config.Config
	Provider source.ContentProvider
	Encoder  video.VideoEncoder
	Logger   *slog.Logger
	Clock    theme.Clock

	// BenchmarkLog - куда дописывается строка отчёта при Config.Stats
	BenchmarkLog string
}

func NewVideoProject(cfg *config.Config, provider source.ContentProvider, ve video.VideoEncoder, logger *slog.Logger) *VideoProject {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoProject{
		Config:       cfg,
		Provider:     provider,
		Encoder:      ve,
		Logger:       logger,
		Clock:        theme.SystemClock{},
		BenchmarkLog: DefaultBenchmarkLog,
	}
}

type timings struct {
	render, audio, encode, total time.Duration
	frames                       int
}

// Run производит весь ролик: тема, контент, кадры, звук, кодирование.
// Промежуточные файлы живут во временной директории и удаляются при любом
// исходе; в Config.Out файл попадает только после успешного мукса.
func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	runID := uuid.NewString()[:8]
	logger := p.Logger.With("run", runID)

	tmp, err := os.MkdirTemp("", "vhstape_"+runID+"_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	seed, th := theme.Make(cfg.Seed, p.Clock)
	logger.Info("тема", "seed", seed, "keyword", th.Keyword, "topic", th.Topic)

	fp := cfg.Frames()
	logger.Info("параметры",
		"size", fmt.Sprintf("%dx%d", fp.Width, fp.Height),
		"fps", fp.FPS,
		"frames", fp.TotalFrames,
		"duration_s", cfg.Video.DurationS)

	// 1) текст и картинки по теме
	bundle := p.Provider.Fetch(ctx, th, tmp)

	// 2) кадры
	r, err := renderer.New(cfg, th, bundle, logger)
	if err != nil {
		return err
	}
	var t timings
	renderStart := time.Now()
	framesDir := filepath.Join(tmp, "frames")
	t.frames, err = renderer.RenderAll(ctx, r, framesDir, cfg.Render.Workers)
	if err != nil {
		return fmt.Errorf("ошибка рендеринга кадров: %w", err)
	}
	t.render = time.Since(renderStart)
	logger.Info("кадры готовы", "frames", t.frames, "elapsed", t.render.Round(time.Millisecond))

	// 3) звук
	audioStart := time.Now()
	track := audio.Synthesize(cfg, th)
	wavPath := filepath.Join(tmp, "audio.wav")
	if err := audio.WriteWAV(wavPath, track); err != nil {
		return err
	}
	t.audio = time.Since(audioStart)
	logger.Info("звук готов", "samples", len(track.Samples), "stingers", len(track.Events))

	// 4) немое видео, затем мукс
	encodeStart := time.Now()
	silent := filepath.Join(tmp, "silent.mp4")
	pattern := filepath.Join(framesDir, renderer.FramePattern)
	if err := p.Encoder.EncodeFrames(ctx, pattern, fp.FPS, fp.Width, fp.Height, silent); err != nil {
		return fmt.Errorf("ошибка кодирования видео: %w", err)
	}
	final := filepath.Join(tmp, "final.mp4")
	if err := p.Encoder.Mux(ctx, silent, wavPath, final); err != nil {
		return fmt.Errorf("ошибка сведения звука: %w", err)
	}
	t.encode = time.Since(encodeStart)

	if err := moveFile(final, cfg.Out); err != nil {
		return fmt.Errorf("ошибка сохранения %s: %w", cfg.Out, err)
	}
	if _, err := os.Stat(cfg.Out); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingOutput, cfg.Out)
	}

	// таймлайн пишется только рядом с готовым видео
	if cfg.DumpTimeline {
		path := director.ScenarioPath(cfg.Out)
		if err := director.WriteScenario(r.Scenario(), path); err != nil {
			return fmt.Errorf("ошибка записи таймлайна: %w", err)
		}
		logger.Info("таймлайн сохранен", "path", path)
	}
	t.total = time.Since(startTime)

	if cfg.Stats {
		p.report(ctx, seed, t)
	}
	return nil
}

// moveFile переносит файл, копируя его, если rename между томами невозможен
func moveFile(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

func (p *VideoProject) report(ctx context.Context, seed string, t timings) {
	cfg := p.Config
	fps := float64(t.frames) / t.total.Seconds()
	host := system.Snapshot(ctx)

	outDur, err := system.ProbeDuration(ctx, cfg.Out)
	if err != nil {
		p.Logger.Warn("не удалось определить длительность результата", "err", err)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Audio: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Output Duration: %.2fs\n"+
			"Host: %s\n"+
			"Pool Allocations: %d\n"+
			"----------------------------\n",
		cfg.BuildVersion, t.total.Seconds(), t.render.Seconds(), t.audio.Seconds(), t.encode.Seconds(), fps,
		outDur, host, system.Allocated(),
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Seed: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f | RSS: %d MB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		seed,
		t.frames,
		t.total.Seconds(),
		t.render.Seconds(),
		t.encode.Seconds(),
		fps,
		host.ProcessRSSMB,
	)

	path := p.BenchmarkLog
	if path == "" {
		path = DefaultBenchmarkLog
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Logger.Warn("не удалось записать benchmark.log", "err", err)
		return
	}
	f.WriteString(logEntry)
	f.Close()
}
