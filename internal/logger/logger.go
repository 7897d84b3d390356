package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// VerboseChecker reports whether verbose output is enabled
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger writes component-tagged diagnostics to stderr. Debug and Info
// are gated on the verbose flag, Warn and Error always print.
type Logger struct {
	component string
	verbose   VerboseChecker
	writer    io.Writer
}

// Field is a key-value pair attached to a log line
type Field struct {
	Key   string
	Value interface{}
}

// New creates a logger for a component
func New(component string, verbose VerboseChecker) *Logger {
	return &Logger{
		component: component,
		verbose:   verbose,
		writer:    os.Stderr,
	}
}

// NewWithCallback creates a logger whose verbose state is re-checked on
// every call. Useful when the flag is parsed after construction.
func NewWithCallback(component string, check func() bool) *Logger {
	return &Logger{
		component: component,
		verbose:   &callbackChecker{callback: check},
		writer:    os.Stderr,
	}
}

// WithComponent returns a copy of the logger tagged with a different component
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component: component,
		verbose:   l.verbose,
		writer:    l.writer,
	}
}

// SetWriter redirects log output, mainly for tests
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// callbackChecker implements VerboseChecker with a callback function
type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

func (l *Logger) isVerbose() bool {
	return l.verbose != nil && l.verbose.IsVerbose()
}

// Debug logs debug messages (only when verbose)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.isVerbose() {
		l.emit("DEBUG", msg, nil, args...)
	}
}

// Info logs informational messages (only when verbose)
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.isVerbose() {
		l.emit("INFO", msg, nil, args...)
	}
}

// Warn logs warning messages (always shown)
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.emit("WARN", msg, nil, args...)
}

// Error logs error messages (always shown)
func (l *Logger) Error(msg string, args ...interface{}) {
	l.emit("ERROR", msg, nil, args...)
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields ...Field) {
	if l.isVerbose() {
		l.emit("DEBUG", msg, fields)
	}
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields ...Field) {
	if l.isVerbose() {
		l.emit("INFO", msg, fields)
	}
}

func (l *Logger) emit(level, msg string, fields []Field, args ...interface{}) {
	component := l.component
	if component == "" {
		component = "main"
	}

	line := fmt.Sprintf("[%s] %s [%s] %s",
		time.Now().Format("15:04:05.000"), level, component, fmt.Sprintf(msg, args...))

	if len(fields) > 0 {
		pairs := make([]string, 0, len(fields))
		for _, f := range fields {
			pairs = append(pairs, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		line += fmt.Sprintf(" [%s]", strings.Join(pairs, " "))
	}

	// A failed diagnostic write has nowhere else to go.
	_, _ = fmt.Fprintln(l.writer, line)
}

// Helper functions for common field types

func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Path(path string) Field {
	return Field{Key: "path", Value: path}
}

func PatternID(id string) Field {
	return Field{Key: "pattern", Value: id}
}
