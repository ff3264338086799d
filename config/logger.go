package config

import (
	"log/slog"
	"os"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the application logger. The handler format follows GO_ENV
// (JSON in production, text everywhere else) and the minimum level follows
// LOG_LEVEL (debug, info, warn, error; unset or unrecognized means info).
func NewLogger() *slog.Logger {
	level, ok := logLevels[os.Getenv("LOG_LEVEL")]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
