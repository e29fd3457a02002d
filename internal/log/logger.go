package log

import (
	"io"
	"log/slog"
)

// Logger is a structured logger on top of slog.Logger. The zero value
// discards everything.
type Logger struct {
	slogger *slog.Logger
}

// NewLogger creates a new Logger that writes JSON lines to the given writer
// at the given minimum level.
func NewLogger(writer io.Writer, level slog.Level) Logger {
	slogger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	return Logger{
		slogger: slogger,
	}
}

// FromSlog wraps an existing *slog.Logger. A nil slogger yields a Logger that
// discards everything.
func FromSlog(slogger *slog.Logger) Logger {
	return Logger{slogger: slogger}
}

// Discard returns a Logger that drops every message.
func Discard() Logger {
	return Logger{}
}

// IsInitialized reports whether the logger writes anywhere.
func (l Logger) IsInitialized() bool {
	return l.slogger != nil
}

// Slog returns the underlying *slog.Logger, or nil for a discarding Logger.
func (l Logger) Slog() *slog.Logger {
	return l.slogger
}

func (l Logger) log(level slog.Level, msg string, args []any) {
	if l.slogger == nil {
		return
	}
	switch level {
	case slog.LevelDebug:
		l.slogger.Debug(msg, args...)
	case slog.LevelWarn:
		l.slogger.Warn(msg, args...)
	case slog.LevelError:
		l.slogger.Error(msg, args...)
	default:
		l.slogger.Info(msg, args...)
	}
}

// Info logs structured info message.
//
// Accepts a message and a list of key-value pairs to be logged.
func (l Logger) Info(msg string, keyVals ...KV) {
	l.log(slog.LevelInfo, msg, kvToArgs(keyVals...))
}

// InfoNs logs structured info message with a namespace.
//
// The namespace is used to differentiate logs from different parts
// and will be included as the first key-value pair in the log.
func (l Logger) InfoNs(namespace string, msg string, keyVals ...KV) {
	l.log(slog.LevelInfo, msg, kvToArgsNs(namespace, keyVals...))
}

// Debug logs structured debug message.
func (l Logger) Debug(msg string, keyVals ...KV) {
	l.log(slog.LevelDebug, msg, kvToArgs(keyVals...))
}

// DebugNs logs structured debug message with a namespace.
func (l Logger) DebugNs(namespace string, msg string, keyVals ...KV) {
	l.log(slog.LevelDebug, msg, kvToArgsNs(namespace, keyVals...))
}

// Warn logs structured warning message.
func (l Logger) Warn(msg string, keyVals ...KV) {
	l.log(slog.LevelWarn, msg, kvToArgs(keyVals...))
}

// WarnNs logs structured warning message with a namespace.
func (l Logger) WarnNs(namespace string, msg string, keyVals ...KV) {
	l.log(slog.LevelWarn, msg, kvToArgsNs(namespace, keyVals...))
}

// Error logs structured error message.
func (l Logger) Error(msg string, keyVals ...KV) {
	l.log(slog.LevelError, msg, kvToArgs(keyVals...))
}

// ErrorNs logs structured error message with a namespace.
func (l Logger) ErrorNs(namespace string, msg string, keyVals ...KV) {
	l.log(slog.LevelError, msg, kvToArgsNs(namespace, keyVals...))
}
