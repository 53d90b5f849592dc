// Package logging builds the process logger from LogConfig.
package logging

import (
	"io"
	"log/slog"

	"github.com/use-agent/scrapedesk/config"
)

// New returns a slog.Logger writing to w at the configured level, as JSON
// unless cfg.Format is "text".
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Level maps a config level name to a slog.Level; unknown names mean info.
func Level(name string) slog.Level {
	switch name {
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
