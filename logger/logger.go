package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a JSON logger on stdout. LOG_LEVEL (debug, info, warn, error) sets
// the minimum level; anything else means info.
func NewLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()})
	logger := slog.New(handler)
	return logger
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
