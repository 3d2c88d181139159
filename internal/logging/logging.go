// Package logging provides the default slog-backed Logger implementation
// shared by the session and deck packages' narrow Logger interfaces.
package logging

import (
	"log/slog"
	"os"
)

// Logger wraps an *slog.Logger to satisfy the Debug/Info/Error(msg string,
// args ...any) shape the core packages depend on, so callers aren't forced
// to hand-write an adapter for the common case.
type Logger struct {
	slog *slog.Logger
}

// New returns a Logger writing JSON records to w at the given level.
// level is one of "debug", "info", "warn", "error"; anything else is
// treated as "info".
func New(w *os.File, level string) *Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{slog: slog.New(handler)}
}

// With returns a Logger with args bound to every subsequent record, for
// scoping log lines to one session or one target.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }
