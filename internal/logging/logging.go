// Package logging configures the process-wide slog logger. The lookup core
// never logs on its own behalf beyond debug-level transport traces, so the
// default level is warn; --verbose in the CLI lowers it to debug.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level string
	JSON  bool
}

// Configure builds a logger writing to stderr and installs it as the slog
// default, so the transport debug traces pick it up.
func Configure(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
