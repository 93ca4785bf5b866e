package system

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// InitResourceLimits поднимает лимит открытых файлов: запись кадров идёт
// в несколько потоков.
func InitResourceLimits(logger *slog.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("не удалось получить лимит файлов", "err", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("не удалось установить лимит файлов", "err", err)
		return
	}
	logger.Debug("лимит открытых файлов увеличен", "nofile", rLimit.Cur)
}

// GetBestH264Encoder выбирает H.264 энкодер по списку ffmpeg -encoders.
// Приоритеты:
// 1. MacOS (VideoToolbox)
// 2. NVIDIA (NVENC)
// 3. Software (libx264)
func GetBestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality - качество по умолчанию для энкодера
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // битрейт = Q*100 кбит/с
	case "h264_nvenc":
		return 28 // эквивалент CRF для NVENC
	default:
		return 23 // стандартный CRF для x264
	}
}

// ProbeDuration возвращает длительность медиафайла по данным ffprobe
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(out)))
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, err
	}
	return duration, nil
}

// HostStats - срез состояния машины для отчёта о производительности
type HostStats struct {
	CPUs         int
	LogicalCPUs  int
	MemTotalMB   uint64
	MemUsedPct   float64
	ProcessRSSMB uint64
	Goroutines   int
}

// Snapshot собирает HostStats. Ошибки отдельных датчиков не фатальны:
// соответствующие поля остаются нулевыми.
func Snapshot(ctx context.Context) HostStats {
	s := HostStats{Goroutines: runtime.NumGoroutine()}

	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		s.CPUs = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemTotalMB = vm.Total >> 20
		s.MemUsedPct = vm.UsedPercent
	}
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
			s.ProcessRSSMB = mi.RSS >> 20
		}
	}
	return s
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU %d/%d | RAM %d MB (%.0f%% used) | RSS %d MB | goroutines %d",
		s.CPUs, s.LogicalCPUs, s.MemTotalMB, s.MemUsedPct, s.ProcessRSSMB, s.Goroutines)
}
