// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a leveled logger handed to every component at construction.
// It keeps printf-style call sites on top of zerolog.
type Logger struct {
	zl zerolog.Logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a console logger writing to w at the given level
func New(w io.Writer, levelStr string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	consoleWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	zl := zerolog.New(consoleWriter).With().Timestamp().Logger().Level(ParseLevel(levelStr))

	return &Logger{zl: zl}
}

// NewJSON creates a logger emitting one JSON object per line
func NewJSON(w io.Writer, levelStr string) *Logger {
	zl := zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(levelStr))
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying an extra field
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// SetLevel changes the minimum level of this logger
func (l *Logger) SetLevel(levelStr string) {
	l.zl = l.zl.Level(ParseLevel(levelStr))
}

// Zerolog exposes the underlying logger
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, v...))
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, v...))
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, v...))
}
