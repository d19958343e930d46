// Package logger provides a leveled, structured logger used throughout the
// application, backed by the standard library's log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Level is a logging level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) slogLevel() slog.Level {
	switch l {
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

// LoggerInterface is the contract the rest of the application depends on,
// so infrastructure code never imports log/slog directly.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// The "c" variants let a caller attribute the log line to a frame up the
	// stack (e.g. a helper logging on behalf of its caller).
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)

	With(args ...any) LoggerInterface
}

// Logger is the default LoggerInterface implementation.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger writing to w at the given level, tagged with name and
// any extra static fields.
func New(w io.Writer, level Level, name string, fields []any) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level.slogLevel(),
		AddSource: true,
	})

	base := slog.New(handler).With("service", name)
	if len(fields) > 0 {
		base = base.With(fields...)
	}

	return &Logger{slog: base}
}

func (l *Logger) log(ctx context.Context, level slog.Level, caller int, msg string, args ...any) {
	if !l.slog.Enabled(ctx, level) {
		return
	}
	// Skip runtime.Callers, log and the exported method, then caller more
	// frames, so the recorded source is the frame the caller asked for.
	var pcs [1]uintptr
	runtime.Callers(3+caller, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.slog.Handler().Handle(ctx, r)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) { l.log(ctx, slog.LevelDebug, 0, msg, args...) }
func (l *Logger) Info(ctx context.Context, msg string, args ...any)  { l.log(ctx, slog.LevelInfo, 0, msg, args...) }
func (l *Logger) Warn(ctx context.Context, msg string, args ...any)  { l.log(ctx, slog.LevelWarn, 0, msg, args...) }
func (l *Logger) Error(ctx context.Context, msg string, args ...any) { l.log(ctx, slog.LevelError, 0, msg, args...) }

func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, caller, msg, args...)
}
func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, caller, msg, args...)
}
func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, caller, msg, args...)
}
func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.log(ctx, slog.LevelError, caller, msg, args...)
}

// With returns a Logger that always includes the given key/value pairs.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{slog: l.slog.With(args...)}
}
