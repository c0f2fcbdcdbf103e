package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a thin wrapper around slog with a compact line format.
type Logger struct {
	Logger *slog.Logger // Capitalized for direct access
	writer io.Writer
}

// Global singleton logger instance
var defaultLogger *Logger

// Init installs the default logger used by Get.
func Init(logger *Logger) {
	defaultLogger = logger
}

// Get returns the default logger, falling back to console output.
func Get() *Logger {
	if defaultLogger == nil {
		defaultLogger = Console()
	}
	return defaultLogger
}

// lineHandler writes "2006-01-02 15:04:05 LEVEL message [k=v, ...]" lines.
type lineHandler struct {
	level slog.Level
	w     io.Writer
}

// Enabled reports whether the handler handles records at the given level
func (h *lineHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats a log record and writes it to the output
func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	timeStr := r.Time.Format("2006-01-02 15:04:05")

	attrs := make([]string, 0)
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != "" {
			attrs = append(attrs, fmt.Sprintf("%s=%s", attr.Key, attr.Value.String()))
		}
		return true
	})

	msg := r.Message
	if len(attrs) > 0 {
		msg += " [" + strings.Join(attrs, ", ") + "]"
	}

	_, err := h.w.Write([]byte(timeStr + " " + r.Level.String() + " " + msg + "\n"))
	return err
}

// WithAttrs returns a new handler whose attributes consist of h's attributes
// followed by attrs
func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Attributes are carried on each record instead
	return h
}

// WithGroup returns a new handler with the given group appended
func (h *lineHandler) WithGroup(name string) slog.Handler {
	return h
}

// File creates a logger that appends to the given file, falling back to
// stderr if the file cannot be opened.
func File(filename string) *Logger {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return Console()
	}

	return &Logger{
		Logger: slog.New(&lineHandler{level: slog.LevelDebug, w: file}),
		writer: file,
	}
}

// Console creates a logger that writes to stderr
func Console() *Logger {
	return &Logger{
		Logger: slog.New(&lineHandler{level: slog.LevelInfo, w: os.Stderr}),
		writer: os.Stderr,
	}
}

// DevNull creates a logger that discards all output
func DevNull() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		writer: io.Discard,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.Logger.Debug(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Logger.Info(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Logger.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Logger.Error(msg, args...)
}

// Close closes the logger if needed (e.g., file handle)
func (l *Logger) Close() error {
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
