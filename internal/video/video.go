package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEncode - внешний энкодер завершился с ошибкой
var ErrEncode = errors.New("ffmpeg failed")

type VideoEncoder interface {
	// EncodeFrames собирает немое видео из последовательности кадров pattern
	EncodeFrames(ctx context.Context, pattern string, fps, width, height int, out string) error
	// Mux накладывает WAV на готовое видео без перекодирования картинки
	Mux(ctx context.Context, videoPath, wavPath, out string) error
}

type FFmpegEncoder struct {
	Encoder string
	Quality int
}

func (e *FFmpegEncoder) EncodeFrames(ctx context.Context, pattern string, fps, width, height int, out string) error {
	return run(ctx, e.encodeArgs(pattern, fps, width, height, out))
}

func (e *FFmpegEncoder) Mux(ctx context.Context, videoPath, wavPath, out string) error {
	return run(ctx, muxArgs(videoPath, wavPath, out))
}

func (e *FFmpegEncoder) encodeArgs(pattern string, fps, width, height int, out string) []string {
	encoder := e.Encoder
	if encoder == "" {
		encoder = "libx264"
	}

	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", pattern,
		// кадры уже нужного размера, neighbor сохраняет пиксельный шум
		"-vf", fmt.Sprintf("scale=%d:%d:flags=neighbor", width, height),
		"-r", fmt.Sprintf("%d", fps),
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		bitrate := e.Quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", e.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium")
	}

	return append(args, out)
}

func muxArgs(videoPath, wavPath, out string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", wavPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		out,
	}
}

func run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %v, output: %s", ErrEncode, err, strings.TrimSpace(string(out)))
	}
	return nil
}
