package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ducminhle1904/agts/internal/config"
)

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelCritical
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) emoji() string {
	switch l {
	case LogLevelDebug:
		return "🔍"
	case LogLevelWarning:
		return "⚠️ "
	case LogLevelError:
		return "❌"
	case LogLevelCritical:
		return "🚨"
	default:
		return "ℹ️ "
	}
}

// ParseLevel maps a configured level name to a LogLevel. Unknown names
// yield LogLevelInfo and ok=false; the configured string itself is never
// rewritten.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LogLevelDebug, true
	case "INFO":
		return LogLevelInfo, true
	case "WARN", "WARNING":
		return LogLevelWarning, true
	case "ERROR":
		return LogLevelError, true
	case "CRITICAL", "FATAL":
		return LogLevelCritical, true
	default:
		return LogLevelInfo, false
	}
}

// Logger is a leveled logger writing to a rotating file and, optionally,
// to the console.
type Logger struct {
	level  LogLevel
	logger *log.Logger
	file   *lumberjack.Logger
	mu     sync.Mutex
}

// Options tweak construction beyond what LoggingConfig describes.
type Options struct {
	// Console mirrors every entry to this writer when set.
	Console io.Writer
	// DisableFile skips the log file entirely.
	DisableFile bool
}

// New builds a logger from the logging group of a config snapshot.
func New(cfg config.LoggingConfig, opts Options) (*Logger, error) {
	level, known := ParseLevel(cfg.LogLevel)

	var writers []io.Writer
	var file *lumberjack.Logger
	if !opts.DisableFile && cfg.LogFile != "" {
		maxMB, err := MaxSizeMegabytes(cfg.MaxFileSize)
		if err != nil {
			return nil, err
		}
		if dir := filepath.Dir(cfg.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
		}

		file = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxMB,
			MaxBackups: max(cfg.BackupCount, 0),
		}
		writers = append(writers, file)
	}
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	l := &Logger{
		level:  level,
		logger: log.New(io.MultiWriter(writers...), "", 0),
		file:   file,
	}

	if !known {
		l.Warning("Unknown log level %q, falling back to %s", cfg.LogLevel, level)
	}
	return l, nil
}

// NewNop returns a logger that drops everything.
func NewNop() *Logger {
	return &Logger{level: LogLevelCritical + 1, logger: log.New(io.Discard, "", 0)}
}

// Level returns the effective level
func (l *Logger) Level() LogLevel {
	return l.level
}

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.level
}

// Log writes a formatted entry when level is enabled
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s %s", timestamp, level, level.emoji(), message)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LogLevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Critical logs a critical message
func (l *Logger) Critical(format string, args ...interface{}) {
	l.Log(LogLevelCritical, format, args...)
}

// LogError logs err with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// megabyte is the unit lumberjack measures MaxSize in
const megabyte = 1024 * 1024

// MaxSizeMegabytes converts a size such as "10MB" to whole megabytes,
// rounding up so that small sizes still rotate at 1MB. An empty size
// yields 0, the rotation library's default.
func MaxSizeMegabytes(size string) (int, error) {
	n, err := ParseFileSize(size)
	if err != nil || n == 0 {
		return 0, err
	}
	return int((n + megabyte - 1) / megabyte), nil
}

// ParseFileSize parses human readable sizes such as "10MB" or "512 KiB".
func ParseFileSize(size string) (int64, error) {
	if strings.TrimSpace(size) == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(size)
	if err != nil {
		return 0, fmt.Errorf("invalid max file size %q: %w", size, err)
	}
	return int64(n), nil
}
