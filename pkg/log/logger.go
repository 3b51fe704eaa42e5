// Package log provides a structured logging interface for hazardous estimators.
//
// This package defines a minimal, slog-compatible logging interface backed by
// zerolog. Estimators obtain named loggers through GetLoggerWithName and emit
// structured fields (sample counts, grid sizes, metric values) alongside
// messages. The global logger can be swapped for testing or silenced entirely.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key-value pairs:
//
//	logger.Info("fit completed", "samples", 1000, "grid_size", 100)
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields pre-populated.
	With(fields ...any) Logger
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = newZerologLogger(os.Stderr)
)

func init() {
	// Route library warnings (DegenerateCensoringWarning etc.) through zerolog.
	hazerrors.SetZerologWarnFunc(func(warning error) {
		GetLogger().Warn("statistical warning", "warning", warning)
	})
}

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// GetLoggerWithName returns a logger tagged with a component name,
// e.g. "survival.gradient_boosting_incidence".
func GetLoggerWithName(name string) Logger {
	return GetLogger().With("component", name)
}

// SetLogger replaces the process-wide default logger.
func SetLogger(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// SetOutput rebuilds the default logger writing to w.
// Pass io.Discard to silence the library.
func SetOutput(w io.Writer) {
	SetLogger(newZerologLogger(w))
}

// zerologLogger adapts zerolog to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

func newZerologLogger(w io.Writer) *zerologLogger {
	return &zerologLogger{
		zl: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			if marshaler, ok := v.(zerolog.LogObjectMarshaler); ok {
				ev = ev.Object(key, marshaler)
			} else {
				ev = ev.AnErr(key, v)
			}
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
