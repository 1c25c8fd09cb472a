package directobj

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with directobj-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithAddr adds the block address to the logger.
func (l *Logger) WithAddr(addr uintptr) *Logger {
	return &Logger{
		Logger: l.Logger.With("addr", addr),
	}
}

// WithComponent tags records with the emitting component (e.g. "directmap").
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogUnusedSpace logs a pass that finished before the end of the payload.
// The block stays valid; the tail bytes are simply never touched.
func (l *Logger) LogUnusedSpace(op string, declared, used int) {
	l.Warn("unused space",
		"op", op,
		"declared", declared,
		"used", used,
		"unused", declared-used,
	)
}

// LogBoundsViolation logs a pass that ran past the end of the payload.
func (l *Logger) LogBoundsViolation(op string, declared, used int) {
	l.Error("read or write exceeded object size",
		"op", op,
		"declared", declared,
		"used", used,
	)
}

// LogRealloc logs a payload resize.
func (l *Logger) LogRealloc(oldLen, newLen int, moved bool, err error) {
	if err != nil {
		l.Error("realloc failed",
			"old_len", oldLen,
			"new_len", newLen,
			"error", err,
		)
	} else {
		l.Debug("realloc completed",
			"old_len", oldLen,
			"new_len", newLen,
			"moved", moved,
		)
	}
}

// LogAllocFailure logs a failed allocation.
func (l *Logger) LogAllocFailure(n int, err error) {
	l.Error("allocation failed",
		"len", n,
		"error", err,
	)
}

// LogHeapClose logs heap teardown with the number of blocks still live.
func (l *Logger) LogHeapClose(live uint64, err error) {
	if err != nil {
		l.Error("heap close failed",
			"live_blocks", live,
			"error", err,
		)
	} else if live > 0 {
		l.Warn("heap closed with live blocks",
			"live_blocks", live,
		)
	} else {
		l.Debug("heap closed")
	}
}
