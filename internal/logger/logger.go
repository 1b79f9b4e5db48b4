package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	slogLogger   *slog.Logger
	levelVar     = new(slog.LevelVar)
	logFile      *os.File
	mu           sync.Mutex
	once         sync.Once
	logPath      string
	initDone     bool
	currentLevel LogLevel = LevelInfo
)

// DefaultLogPath is where the TUI writes its log. The terminal is owned by
// Bubble Tea, so nothing is ever logged to stdout or stderr.
const DefaultLogPath = "/tmp/imagine-debug.log"

// RunLogPath returns the log path for a headless generate run.
func RunLogPath(runID string) string {
	return fmt.Sprintf("/tmp/imagine-run-%s.log", runID)
}

// SetLevel sets the minimum log level to output
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	levelVar.Set(level.toSlogLevel())
}

// SetDebug enables debug level logging
func SetDebug(enabled bool) {
	if enabled {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelInfo)
	}
}

// Init opens path as the log destination. It is a no-op after the first
// successful call; if never called, DefaultLogPath is used lazily.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}
	if err := open(path); err != nil {
		return err
	}
	initDone = true
	return nil
}

func open(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logPath = path
	logFile = f
	levelVar.Set(currentLevel.toSlogLevel())
	slogLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	slogLogger.Info("Logger initialized", "path", path)
	return nil
}

func ensureInit() {
	if initDone {
		return
	}
	once.Do(func() {
		if err := open(DefaultLogPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return
		}
		initDone = true
	})
}

func logWithLevel(level slog.Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	if slogLogger == nil {
		return
	}
	if !slogLogger.Enabled(context.Background(), level) {
		return
	}
	slogLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug writes a debug message to the log file (only if level is LevelDebug)
func Debug(format string, args ...any) {
	logWithLevel(slog.LevelDebug, format, args...)
}

// Info writes an info message to the log file
func Info(format string, args ...any) {
	logWithLevel(slog.LevelInfo, format, args...)
}

// Warn writes a warning message to the log file
func Warn(format string, args ...any) {
	logWithLevel(slog.LevelWarn, format, args...)
}

// Error writes an error message to the log file
func Error(format string, args ...any) {
	logWithLevel(slog.LevelError, format, args...)
}

// Path returns the active log file path, or "" before initialization.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	slogLogger = nil
}

// Reset resets the logger state, allowing reinitialization.
// This is primarily for testing purposes.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	initDone = false
	once = sync.Once{}
	logPath = ""
	slogLogger = nil
	currentLevel = LevelInfo
	levelVar = new(slog.LevelVar)
}

// ClearLogs removes the TUI log and all headless run logs from /tmp
func ClearLogs() (int, error) {
	return clearLogs(DefaultLogPath, "/tmp/imagine-run-*.log")
}

func clearLogs(mainLog, runGlob string) (int, error) {
	count := 0

	if err := os.Remove(mainLog); err == nil {
		count++
	} else if !os.IsNotExist(err) {
		return count, err
	}

	runLogs, err := filepath.Glob(runGlob)
	if err != nil {
		return count, err
	}
	for _, p := range runLogs {
		if err := os.Remove(p); err == nil {
			count++
		} else if !os.IsNotExist(err) {
			return count, err
		}
	}
	return count, nil
}

// WithComponent returns a slog.Logger with the component attribute pre-attached.
//
//	log := logger.WithComponent("refs")
//	log.Info("reference added", "count", n)
func WithComponent(component string) *slog.Logger {
	return with(slog.String("component", component))
}

// WithTask returns a slog.Logger scoped to a queued generation task.
func WithTask(taskID string) *slog.Logger {
	return with(slog.String("taskID", taskID))
}

func with(attr slog.Attr) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	if slogLogger == nil {
		return slog.Default()
	}
	return slogLogger.With(attr)
}
