package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	HTTPTimeout    time.Duration
	UploadTimeout  time.Duration
	LogLevel       slog.Level
	MaxUploadBytes int64
	MaxRows        int
	UnzipSizeLimit int64
}

// Load lee un .env opcional y luego el entorno.
func Load() (Config, bool) {
	loaded := godotenv.Load() == nil
	return FromEnv(), loaded
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return Config{
		Port:           envOr("PORT", "8080"),
		HTTPTimeout:    to,
		UploadTimeout:  time.Duration(intOr("UPLOAD_TIMEOUT_SECONDS", 300)) * time.Second,
		LogLevel:       lvl,
		MaxUploadBytes: int64(intOr("MAX_UPLOAD_MB", 50)) << 20,
		MaxRows:        intOr("MAX_ROWS", 100_000),
		UnzipSizeLimit: int64(intOr("XLSX_UNZIP_LIMIT_MB", 256)) << 20,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func intOr(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
