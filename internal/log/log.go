// Package log provides leveled, categorised key=value logging for the service.
//
// Entries look like:
//
//	2026-02-15T09:00:00 [INFO] [http] request method=GET path=/events status=200
//
// Logging is a no-op until Init or InitFile is called.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

// ParseLevel maps a config string to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatHTTP         Category = "http"         // access log and handler failures
	CatDB           Category = "db"           // postgres pool and migrations
	CatCatalog      Category = "catalog"      // catalog loading and filtering
	CatRegistration Category = "registration" // register/unregister transitions
	CatConfig       Category = "config"       // configuration loading
	CatNotify       Category = "notify"       // notice fan-out
	CatCache        Category = "cache"        // viewer session cache
)

// Logger writes formatted entries to a writer.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	minLevel Level
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init installs a logger writing to w at or above minLevel.
func Init(w io.Writer, minLevel Level) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = &Logger{writer: w, minLevel: minLevel}
}

// InitFile installs a logger appending to the file at path.
// Returns a cleanup function that closes the file.
func InitFile(path string, minLevel Level) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // operator-supplied log path
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Init(f, minLevel)
	return func() { _ = f.Close() }, nil
}

// Disable drops every subsequent entry.
func Disable() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = nil
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l == nil || level < l.minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	// Odd field count: keep the orphan key visible.
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, b.String())
}
