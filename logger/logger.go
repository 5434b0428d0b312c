// Package logger provides a single swappable logging hook for the pdftext
// pipeline. The parser itself never picks a logging backend; callers wire
// one in once, before the first document is parsed.
package logger

import (
	"github.com/ragtext/pdftext/tracer"
)

// LogLevel represents log severity.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels.
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

var logFunc LogFunc = func(level LogLevel, msg string, keyvals ...interface{}) {
}

// SetLogger sets the global logger function.
func SetLogger(f LogFunc) {
	if f != nil {
		logFunc = f
	}
}

// Debug logs a message at debug level.
// If the last keyvals element is a bool and true, it is treated as a trace
// flag and the message is also appended to the tracer buffer.
func Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	logFunc(DebugLevel, msg, keyvals...)

	if trace {
		tracer.Log(msg)
	}
}

// Warn logs a message at warn level. Used for "local tolerance"
// events: conditions that are swallowed but worth surfacing (unknown
// filter pass-through, predictor no-op, depth-capped cycles, dropped
// codepoints).
func Warn(msg string, keyvals ...interface{}) {
	logFunc(WarnLevel, msg, keyvals...)
}

// Error logs a message at error level.
func Error(msg string, keyvals ...interface{}) {
	logFunc(ErrorLevel, msg, keyvals...)
}
