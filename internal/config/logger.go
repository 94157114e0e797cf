package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger. Development gets human readable text,
// everything else JSON.
func (c LoggerConfig) NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}

	if env == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func (c LoggerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
