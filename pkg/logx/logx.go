// Package logx provides leveled console logging for the launcher and its
// supervised children. Output goes to stderr so child stdout stays clean.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

type Logger struct {
	name   string
	logger *log.Logger
}

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Verbosity bounds accepted by SetVerbosity and the -v/--verbose flag.
const (
	MinVerbosity = 0
	MaxVerbosity = 4
)

// Global verbosity shared by all loggers:
// 0 silences everything, 1 shows errors, 2 adds warnings,
// 3 adds info, 4 adds debug.
var (
	verbosityMu sync.RWMutex
	verbosity   = 1
)

// SetVerbosity sets the global console verbosity. Out-of-range values
// are clamped.
func SetVerbosity(v int) {
	verbosityMu.Lock()
	defer verbosityMu.Unlock()

	if v < MinVerbosity {
		v = MinVerbosity
	}
	if v > MaxVerbosity {
		v = MaxVerbosity
	}
	verbosity = v
}

// Verbosity returns the current global verbosity.
func Verbosity() int {
	verbosityMu.RLock()
	defer verbosityMu.RUnlock()
	return verbosity
}

// ValidVerbosity reports whether v is an accepted verbosity value.
func ValidVerbosity(v int) bool {
	return v >= MinVerbosity && v <= MaxVerbosity
}

// levelEnabled reports whether a message at the given level passes the
// verbosity filter.
func levelEnabled(v int, level Level) bool {
	switch level {
	case LevelError:
		return v >= 1
	case LevelWarn:
		return v >= 2
	case LevelInfo:
		return v >= 3
	case LevelDebug:
		return v >= 4
	default:
		return false
	}
}

func NewLogger(name string) *Logger {
	return &Logger{
		name:   name,
		logger: log.New(os.Stderr, "", 0), // Log to stderr for CLI compatibility
	}
}

// newLoggerTo is used by tests to capture output.
func newLoggerTo(name string, w io.Writer) *Logger {
	return &Logger{
		name:   name,
		logger: log.New(w, "", 0),
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !levelEnabled(Verbosity(), level) {
		return
	}
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s: %s", timestamp, l.name, level, message)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		name:   name,
		logger: l.logger,
	}
}

// Global logging functions for convenience.
var defaultLogger = NewLogger("simlaunch")

func Debugf(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

func Infof(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

func Warnf(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

// Errorf logs and returns the formatted error.
// Use this when you need both logging and error returning:
//
//	err := logx.Errorf("spawn failed: %w", err)
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	defaultLogger.Error("%s", err.Error())
	return err
}

// Wrap logs msg + ": " + err.Error() and returns fmt.Errorf("%s: %w", msg, err).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	wrappedErr := fmt.Errorf("%s: %w", msg, err)
	defaultLogger.Error("%s", wrappedErr.Error())
	return wrappedErr
}
