// Package logging provides the Recorder capability handed to stores and the
// record codec, backed by log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Recorder receives human-readable event messages.
type Recorder interface {
	Record(message string)
}

// Logger is a Recorder that writes structured records through slog.
type Logger struct {
	log    *slog.Logger
	closer io.Closer
}

// New creates a Logger writing text records to w at the given level.
// Every record carries a per-process session id.
func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		log: slog.New(handler).With("session", uuid.NewString()),
	}
}

// OpenFile appends log records to the file at path, creating it if needed.
func OpenFile(path string, level slog.Level) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	l := New(f, level)
	l.closer = f
	return l, nil
}

// Record logs message at info level.
func (l *Logger) Record(message string) {
	l.log.Info(message)
}

// Recordf formats and logs at info level.
func (l *Logger) Recordf(format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...))
}

// Warn logs message at warn level with optional key/value attributes.
func (l *Logger) Warn(message string, args ...any) {
	l.log.Warn(message, args...)
}

// Error logs message at error level with optional key/value attributes.
func (l *Logger) Error(message string, args ...any) {
	l.log.Error(message, args...)
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.log
}

// Close closes the log file if the Logger owns one.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

type discard struct{}

func (discard) Record(string) {}

// Discard drops every message.
var Discard Recorder = discard{}

// ParseLevel maps a config string to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Func adapts a plain function to the Recorder interface.
type Func func(message string)

// Record calls f(message).
func (f Func) Record(message string) { f(message) }
