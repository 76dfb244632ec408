package logger

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level string
}

// Setup installs a JSON slog handler as the process-wide default.
func Setup(cfg Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})))
}

// ParseLevel maps a level name to slog.Level. Unknown names mean INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
