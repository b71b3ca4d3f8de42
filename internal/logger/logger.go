// Package logger provides a small, centralized logging facade with
// configurable verbosity levels, backed by a zap sugared logger.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("pricing %d contracts", n)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var (
	mu      sync.RWMutex
	current = Info
	sugar   = newDefault()
)

// newDefault builds a console logger writing to stderr so that
// report output on stdout stays clean for pipelines.
func newDefault() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during startup, after flags and config are read.
func SetVerbosity(v int) {
	mu.Lock()
	current = Level(v)
	mu.Unlock()
}

// Verbosity returns the active verbosity level.
func Verbosity() Level {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetLogger replaces the backing zap logger. Tests use it to observe output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	sugar = l.WithOptions(zap.AddCallerSkip(2)).Sugar()
	mu.Unlock()
}

// Sync flushes any buffered entries.
func Sync() {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	_ = s.Sync()
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	s, cur := sugar, current
	mu.RUnlock()

	if cur < l {
		return
	}
	switch l {
	case Error:
		s.Errorf(format, args...)
	case Info:
		s.Infof(format, args...)
	default:
		// zap has no trace level; trace entries go out at debug
		s.Debugf(format, args...)
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, format, args...)
}

// Infof logs an informational message for major lifecycle events.
func Infof(format string, args ...any) {
	logf(Info, format, args...)
}

// Debugf logs diagnostic information.
func Debugf(format string, args ...any) {
	logf(Debug, format, args...)
}

// Tracef logs very detailed execution traces. Use sparingly.
func Tracef(format string, args ...any) {
	logf(Trace, format, args...)
}
