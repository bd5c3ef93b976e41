// Package log provides category-tagged structured logging for vitality.
//
// Every call names a Category so output can be filtered by subsystem:
//
//	log.Debug(log.CatDB, "Opening database", "path", path)
//	log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Category identifies the subsystem emitting a log record.
type Category string

const (
	CatDB     Category = "db"
	CatConfig Category = "config"
	CatDomain Category = "domain"
	CatApp    Category = "app"
	CatCLI    Category = "cli"
	CatTrace  Category = "trace"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init configures the package logger. Records below level are dropped.
// Passing a nil writer sends output to stderr.
func Init(w io.Writer, level slog.Level) {
	if w == nil {
		w = os.Stderr
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	mu.Lock()
	logger = l
	mu.Unlock()
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func withCat(cat Category, args []any) []any {
	return append([]any{"cat", string(cat)}, args...)
}

// Debug logs at debug level.
func Debug(cat Category, msg string, args ...any) {
	current().Debug(msg, withCat(cat, args)...)
}

// Info logs at info level.
func Info(cat Category, msg string, args ...any) {
	current().Info(msg, withCat(cat, args)...)
}

// Warn logs at warn level.
func Warn(cat Category, msg string, args ...any) {
	current().Warn(msg, withCat(cat, args)...)
}

// Error logs at error level.
func Error(cat Category, msg string, args ...any) {
	current().Error(msg, withCat(cat, args)...)
}

// ErrorErr logs at error level with err attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, args ...any) {
	current().Error(msg, withCat(cat, append([]any{"error", err}, args...))...)
}
