// Package logging provides logging functionality for the server using slog
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Custom logging levels (compatible with slog)
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug // -4
	LevelInfo  = slog.LevelInfo  // 0
	LevelWarn  = slog.LevelWarn  // 4
	LevelError = slog.LevelError // 8
	LevelFatal = slog.Level(12)
)

// Constants for level names
var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// ParseLevel converts a textual level (as found in LOG_LEVEL) to a slog.Level.
// Unknown values fall back to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// LoggerFactory is a factory for creating component logger instances
type LoggerFactory struct {
	handler slog.Handler
}

// NewLoggerFactory creates a new factory writing text records to stderr
// at the given minimum level
func NewLoggerFactory(level slog.Level) *LoggerFactory {
	return NewLoggerFactoryWithWriter(os.Stderr, level)
}

// NewLoggerFactoryWithWriter creates a new factory with a custom writer,
// mainly useful in tests
func NewLoggerFactoryWithWriter(w io.Writer, level slog.Level) *LoggerFactory {
	if w == nil {
		w = os.Stderr
	}

	options := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: customizeLogLevels,
	}

	return &LoggerFactory{
		handler: slog.NewTextHandler(w, options),
	}
}

// CreateLogger creates a new logger tagged with the component name
func (f *LoggerFactory) CreateLogger(name string) *slog.Logger {
	return slog.New(f.handler).With("component", name)
}

// customizeLogLevels customizes log level names so the custom levels
// render as TRACE/FATAL instead of DEBUG-4/ERROR+4
func customizeLogLevels(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		if name, ok := levelNames[level]; ok {
			return slog.Attr{Key: a.Key, Value: slog.StringValue(name)}
		}
	}
	return a
}

// Trace logs at trace level
func Trace(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(context.TODO(), LevelTrace, msg, args...)
}

// Debug logs at debug level
func Debug(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Debug(msg, args...)
}

// Info logs at info level
func Info(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Info(msg, args...)
}

// Warn logs at warn level
func Warn(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, args...)
}

// Error logs at error level
func Error(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Error(msg, args...)
}

// Fatal logs at fatal level and exits
func Fatal(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Log(context.TODO(), LevelFatal, msg, args...)
	}
	os.Exit(1)
}
