package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-mdblog/internal/config"
)

// newLogger builds the CLI logger on w. --verbose forces debug and --quiet
// forces error, overriding log.level.
func newLogger(w io.Writer, cfg config.LogConfig, quiet, verbose bool) *slog.Logger {
	level := parseLevel(cfg.Level)
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
