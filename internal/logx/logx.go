// Package logx configures leveled logging for the daemon.
// The root logger is constructed once in main and handed to each component;
// there is no package-level mutable state.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// New creates the root logger writing to w, filtered at the given minimum
// level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Named returns a child of l tagged with a component name.
func Named(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}

// Discard returns a logger that drops everything. Used as the default when
// a component is constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name or numeric severity onto a slog level.
// Names: debug, info, warning (or warn), error. Numeric severities use the
// 0=debug, 1=info, 2=warning, 3=error scale; values above 3 clamp to error
// and values below 0 clamp to debug. An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	if n < 0 {
		n = 0
	}
	if n > 3 {
		n = 3
	}
	switch n {
	case 0:
		return slog.LevelDebug, nil
	case 1:
		return slog.LevelInfo, nil
	case 2:
		return slog.LevelWarn, nil
	default:
		return slog.LevelError, nil
	}
}
