// Package logging provides categorized structured logging for quantmind.
// Each subsystem logs through its own category so operational noise from the
// storage fast path can be filtered independently from rebuild and fetch
// activity. Output goes through a shared zap core; before Initialize is
// called every logger is a no-op, which keeps library use silent by default.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, layout creation, index loading
	CategoryStorage Category = "storage" // Category store operations
	CategoryIndex   Category = "index"   // Index table load/persist/rebuild
	CategoryFetch   Category = "fetch"   // External artifact retrieval
	CategoryWatcher Category = "watcher" // Filesystem tamper watcher
)

var (
	mu      sync.RWMutex
	base    *zap.Logger = zap.NewNop()
	loggers             = make(map[Category]*Logger)
)

// Logger wraps a category-named zap logger with printf-style methods.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Initialize configures the shared logging core. level is one of
// debug/info/warn/error; anything else defaults to info. When logFile is
// empty, output goes to stderr.
func Initialize(level, logFile string) error {
	var zl zapcore.Level
	switch level {
	case "debug":
		zl = zapcore.DebugLevel
	case "warn", "warning":
		zl = zapcore.WarnLevel
	case "error":
		zl = zapcore.ErrorLevel
	default:
		zl = zapcore.InfoLevel
	}

	sink := zapcore.Lock(os.Stderr)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		sink = zapcore.Lock(f)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, zl)

	mu.Lock()
	defer mu.Unlock()
	base = zap.New(core)
	loggers = make(map[Category]*Logger)
	return nil
}

// SetBase replaces the shared zap logger directly. Used by the CLI, which
// builds its own zap config, and by tests that capture output.
func SetBase(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	base = l
	loggers = make(map[Category]*Logger)
}

// Get returns (or creates) the logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{sugar: base.Named(string(category)).WithOptions(zap.AddCallerSkip(1)).Sugar()}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Convenience functions so call sites stay short.

// Storage logs to the storage category.
func Storage(format string, args ...interface{}) {
	Get(CategoryStorage).Info(format, args...)
}

// StorageDebug logs debug to the storage category.
func StorageDebug(format string, args ...interface{}) {
	Get(CategoryStorage).Debug(format, args...)
}

// Index logs to the index category.
func Index(format string, args ...interface{}) {
	Get(CategoryIndex).Info(format, args...)
}

// IndexDebug logs debug to the index category.
func IndexDebug(format string, args ...interface{}) {
	Get(CategoryIndex).Debug(format, args...)
}

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Fetch logs to the fetch category.
func Fetch(format string, args ...interface{}) {
	Get(CategoryFetch).Info(format, args...)
}

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
