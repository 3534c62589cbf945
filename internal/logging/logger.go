// Package logging provides config-driven categorized logging for editcmd.
// Every category is a named child of one zap logger; disabled categories
// get a no-op logger so call sites never need to check.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryCommands  Category = "commands"  // Command dispatch, input/output resolution
	CategoryShell     Category = "shell"     // Shell command staging and subprocesses
	CategoryHistory   Category = "history"   // Command history recording
	CategoryRegistrar Category = "registrar" // Command registration blocks
	CategoryBundles   Category = "bundles"   // Bundle loading and watching
	CategoryStore     Category = "store"     // SQLite persistence
	CategorySurface   Category = "surface"   // Editor surfaces, scope lookup
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // empty writes to stderr
	Categories map[string]bool // per-category toggles, missing = enabled
	Disabled   bool
}

// Logger is a printf-style logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	categories map[string]bool
	loggers    = make(map[Category]*Logger)
)

// Initialize builds the process logger from opts. It may be called again
// to reconfigure; previously returned category loggers keep the old core.
func Initialize(opts Options) error {
	if opts.Disabled {
		install(zap.NewNop(), opts.Categories)
		return nil
	}

	cfg := zap.NewProductionConfig()
	if opts.Format != "json" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.Sampling = nil
	cfg.DisableStacktrace = true

	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	install(l, opts.Categories)

	Get(CategoryBoot).Debug("logging initialized: level=%s format=%s file=%q", level, cfg.Encoding, opts.File)
	return nil
}

// UseLogger installs l as the process logger and returns a function that
// restores the previous one. Intended for tests and embedding hosts.
func UseLogger(l *zap.Logger) (restore func()) {
	mu.Lock()
	prevBase, prevCats := base, categories
	mu.Unlock()

	install(l, nil)
	return func() { install(prevBase, prevCats) }
}

func install(l *zap.Logger, cats map[string]bool) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	categories = cats
	loggers = make(map[Category]*Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	enabled := IsCategoryEnabled(category)

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	z := zap.NewNop()
	if enabled {
		z = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: z.Sugar()}
	loggers[category] = l
	return l
}

// Zap exposes the structured logger behind a category.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// StructuredLog writes a message with key-value fields at the given level.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch level {
	case "debug":
		l.sugar.Debugw(msg, kv...)
	case "warn":
		l.sugar.Warnw(msg, kv...)
	case "error":
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// With returns a child logger carrying the given key-value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes buffered log entries (call at shutdown).
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	_ = l.Sync()
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// BootWarn logs warning to the boot category
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warn(format, args...)
}

// Commands logs to the commands category
func Commands(format string, args ...interface{}) {
	Get(CategoryCommands).Info(format, args...)
}

// CommandsDebug logs debug to the commands category
func CommandsDebug(format string, args ...interface{}) {
	Get(CategoryCommands).Debug(format, args...)
}

// CommandsWarn logs warning to the commands category
func CommandsWarn(format string, args ...interface{}) {
	Get(CategoryCommands).Warn(format, args...)
}

// CommandsError logs error to the commands category
func CommandsError(format string, args ...interface{}) {
	Get(CategoryCommands).Error(format, args...)
}

// Shell logs to the shell category
func Shell(format string, args ...interface{}) {
	Get(CategoryShell).Info(format, args...)
}

// ShellDebug logs debug to the shell category
func ShellDebug(format string, args ...interface{}) {
	Get(CategoryShell).Debug(format, args...)
}

// ShellWarn logs warning to the shell category
func ShellWarn(format string, args ...interface{}) {
	Get(CategoryShell).Warn(format, args...)
}

// ShellError logs error to the shell category
func ShellError(format string, args ...interface{}) {
	Get(CategoryShell).Error(format, args...)
}

// HistoryDebug logs debug to the history category
func HistoryDebug(format string, args ...interface{}) {
	Get(CategoryHistory).Debug(format, args...)
}

// HistoryWarn logs warning to the history category
func HistoryWarn(format string, args ...interface{}) {
	Get(CategoryHistory).Warn(format, args...)
}

// Registrar logs to the registrar category
func Registrar(format string, args ...interface{}) {
	Get(CategoryRegistrar).Info(format, args...)
}

// RegistrarDebug logs debug to the registrar category
func RegistrarDebug(format string, args ...interface{}) {
	Get(CategoryRegistrar).Debug(format, args...)
}

// Bundles logs to the bundles category
func Bundles(format string, args ...interface{}) {
	Get(CategoryBundles).Info(format, args...)
}

// BundlesDebug logs debug to the bundles category
func BundlesDebug(format string, args ...interface{}) {
	Get(CategoryBundles).Debug(format, args...)
}

// BundlesWarn logs warning to the bundles category
func BundlesWarn(format string, args ...interface{}) {
	Get(CategoryBundles).Warn(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// StoreWarn logs warning to the store category
func StoreWarn(format string, args ...interface{}) {
	Get(CategoryStore).Warn(format, args...)
}

// SurfaceDebug logs debug to the surface category
func SurfaceDebug(format string, args ...interface{}) {
	Get(CategorySurface).Debug(format, args...)
}

// =============================================================================
// TIMING
// =============================================================================

// Timer measures an operation and logs its duration when stopped.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
