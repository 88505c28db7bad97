package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Structured attribute keys shared by the save and report paths.
const (
	KeyRequestID = "request_id"
	KeySaveID    = "save_id"
	KeyOperation = "op"
	KeyProject   = "project_id"
	KeyUser      = "user_id"
	KeyDate      = "date"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyCount     = "count"
)

var (
	defaultLogger *slog.Logger
	loggerMu      sync.RWMutex
)

func init() {
	Init(os.Stderr, DebugEnabled())
}

// Init replaces the package logger. Debug level is used when debug is true,
// warnings and above otherwise so normal CLI output stays clean.
func Init(out io.Writer, debug bool) {
	if out == nil {
		out = os.Stderr
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// Logger returns the current logger instance.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// With returns a logger with additional attributes.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}
