package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/engine"
	"github.com/ivlev/vhstape/internal/source"
	"github.com/ivlev/vhstape/internal/system"
	"github.com/ivlev/vhstape/internal/video"
)

// задается через -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	// .env может задать VHSTAPE_CONFIG / VHSTAPE_SEED / VHSTAPE_OUT
	_ = godotenv.Load()

	configPtr := flag.String("config", envOr("VHSTAPE_CONFIG", "config.yaml"), "Путь к YAML конфигу (если файла нет, используются значения по умолчанию)")
	outPtr := flag.String("out", os.Getenv("VHSTAPE_OUT"), "Путь к итоговому видео")
	seedPtr := flag.String("seed", os.Getenv("VHSTAPE_SEED"), "Сид (AUTO - текущее время)")
	durationPtr := flag.Float64("duration", 0, "Длительность видео в секундах")
	widthPtr := flag.Int("width", 0, "Ширина")
	heightPtr := flag.Int("height", 0, "Высота")
	fpsPtr := flag.Int("fps", 0, "FPS")
	bwPtr := flag.Bool("bw", false, "Черно-белая запись")
	offlinePtr := flag.Bool("offline", false, "Не обращаться к Wikipedia, только локальные документы и встроенный текст")
	dumpPtr := flag.Bool("dump-timeline", false, "Сохранить таймлайн рядом с видео (<out>.timeline.yaml)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать benchmark.log")
	verbosePtr := flag.Bool("v", false, "Подробный лог")

	flag.Parse()

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPtr, logger)
	if err != nil {
		logger.Error("ошибка конфига", "path", *configPtr, "err", err)
		os.Exit(1)
	}

	if *outPtr != "" {
		cfg.Out = *outPtr
	}
	if *seedPtr != "" {
		cfg.Seed = *seedPtr
	}
	if *durationPtr > 0 {
		cfg.Video.DurationS = *durationPtr
	}
	if *widthPtr > 0 {
		cfg.Video.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Video.Height = *heightPtr
	}
	if *fpsPtr > 0 {
		cfg.Video.FPS = *fpsPtr
	}
	if *bwPtr {
		cfg.Style.BlackWhite = true
	}
	if *offlinePtr {
		cfg.Scrape.Enabled = false
	}
	cfg.Stats = cfg.Stats || *statsPtr
	cfg.DumpTimeline = *dumpPtr
	cfg.BuildVersion = buildVersion

	if err := cfg.Validate(); err != nil {
		logger.Error("некорректный конфиг", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits(logger)

	encoderName := cfg.Encode.Encoder
	if encoderName == "" || encoderName == "auto" {
		encoderName = system.GetBestH264Encoder(ctx)
		if encoderName != "libx264" {
			logger.Info("обнаружено аппаратное ускорение", "encoder", encoderName)
		}
	}
	quality := cfg.Encode.Quality
	if quality == 0 {
		quality = system.DefaultQuality(encoderName)
	}

	ve := &video.FFmpegEncoder{Encoder: encoderName, Quality: quality}
	provider := source.NewProvider(cfg.Scrape, logger)

	project := engine.NewVideoProject(cfg, provider, ve, logger)
	if err := project.Run(ctx); err != nil {
		stop()
		logger.Error("ошибка проекта", "err", err)
		os.Exit(1)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.Out)
}

// loadConfig читает YAML поверх значений по умолчанию. Отсутствующий файл
// по умолчанию не ошибка.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("конфиг не найден, используются значения по умолчанию", "path", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
