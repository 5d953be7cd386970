// Package logger provides structured logging for the application services.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger with the chained field helpers used across the
// application services.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger writing JSON lines to w, tagged with the component name.
func New(component string, w io.Writer) *Logger {
	zl := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &Logger{zl: zl}
}

// NewDefault creates a logger writing to stderr. The LOG_LEVEL environment
// variable controls verbosity (debug, info, warn, error); default is info.
func NewDefault(component string) *Logger {
	l := New(component, os.Stderr)
	l.zl = l.zl.Level(levelFromEnv())
	return l
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithField returns a logger with the field attached to every event.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
