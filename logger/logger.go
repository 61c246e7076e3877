// Package logger provides the application-wide structured logger. It wraps
// log/slog with a small Level/Config surface so the exporter packages can
// depend on a narrow interface instead of a concrete handler.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the interface for application-wide logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogLogger emits records through a slog handler.
type slogLogger struct {
	handler  slog.Handler
	minLevel Level
}

// New creates a logger from the given config. FormatJSON selects a JSON
// handler, anything else a human-readable text handler. A nil Output writes
// to stderr so log lines never interleave with exported data on stdout.
func New(cfg Config) Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return &slogLogger{handler: handler, minLevel: cfg.Level}
}

// Default returns a text logger at Info level writing to stderr.
func Default() Logger {
	return New(Config{Level: LevelInfo, Format: FormatText})
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() Logger {
	return New(Config{Level: LevelError + 1, Output: io.Discard})
}

func (l *slogLogger) log(level slog.Level, msg string, args ...any) {
	if levelFromSlog(level) < l.minLevel {
		return
	}
	rec := slog.NewRecord(time.Now(), level, msg, 0)
	rec.Add(args...)
	_ = l.handler.Handle(context.Background(), rec)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// slogLevel converts our Level to slog.Level.
func slogLevel(lvl Level) slog.Level {
	switch lvl {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelFromSlog converts slog.Level to our Level type.
func levelFromSlog(lvl slog.Level) Level {
	switch lvl {
	case slog.LevelDebug:
		return LevelDebug
	case slog.LevelWarn:
		return LevelWarn
	case slog.LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}
