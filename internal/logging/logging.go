// Package logging configures the structured logger used by skiprope tools.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance. It discards all output until Init is
// called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger initialization.
type Options struct {
	Level  string    // debug, info, warn or error. Default: info
	Format string    // text or json. Default: text
	Output io.Writer // Default: os.Stderr
}

// Init replaces L according to opts.
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		L = slog.New(slog.NewTextHandler(out, handlerOpts))
	case "json":
		L = slog.New(slog.NewJSONHandler(out, handlerOpts))
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", opts.Format)
	}
	return nil
}

// Discard resets L to drop everything.
func Discard() {
	L = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", s)
	}
}
