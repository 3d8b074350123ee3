// Package log provides structured logging for mlgo machine learning
// operations.
//
// It defines a minimal, slog-compatible Logger interface backed by zerolog,
// with ML-specific attribute keys and a capture-friendly TestLogger. Model
// packages log through this interface so the backend can be swapped without
// touching estimator code.
package log

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	mlerrors "github.com/manufacturingnet/mlgo/pkg/errors"
)

// Logger is a structured logging interface with leveled methods and
// key-value fields, compatible in spirit with log/slog.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)
	// Info logs general operational information.
	Info(msg string, fields ...any)
	// Warn logs potentially problematic conditions that do not stop
	// execution.
	Warn(msg string, fields ...any)
	// Error logs error conditions. An error value passed as a field value
	// is rendered with its structured form when available.
	Error(msg string, fields ...any)
	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger
	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerologLevel() zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields ...any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.zl.Debug(), msg, fields...)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.zl.Info(), msg, fields...)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.zl.Warn(), msg, fields...)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	z.emit(z.zl.Error(), msg, fields...)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return level.zerologLevel() >= z.zl.GetLevel()
}

var (
	loggerMu      sync.RWMutex
	defaultLogger Logger = NewZerologLogger(
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
	)
)

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the default logger scoped to a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLogger replaces the process-wide default logger. Intended for tests
// and for applications that carry their own zerolog configuration.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = l
}

// SetLevel sets the minimum level emitted by the default zerolog backend.
func SetLevel(level Level) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if z, ok := defaultLogger.(*zerologLogger); ok {
		defaultLogger = &zerologLogger{zl: z.zl.Level(level.zerologLevel())}
	}
}

// Route library warnings (ConvergenceWarning etc.) through the logger.
func init() {
	mlerrors.SetZerologWarnFunc(func(warning error) {
		GetLogger().Warn("warning", ErrAttrKey, warning)
	})
}
