// Package logging is a small subsystem-tagged front end over log/slog.
//
// Every entry carries a "subsystem" attribute naming the component that
// wrote it (Config, Serve, Cleanup, ...):
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Cleanup", "Removed %d result directories", n)
//	logging.Error("Serve", err, "MCP server stopped with an error")
//
// Logs never go to stdout: the stdio MCP transport owns it.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel is the minimum severity an entry needs to be written.
type LogLevel slog.Level

const (
	LevelDebug = LogLevel(slog.LevelDebug)
	LevelInfo  = LogLevel(slog.LevelInfo)
	LevelWarn  = LogLevel(slog.LevelWarn)
	LevelError = LogLevel(slog.LevelError)
)

func (l LogLevel) String() string { return slog.Level(l).String() }

// ParseLevel maps a configured level name to a LogLevel. The empty string
// is info.
func ParseLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	for _, l := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if name == strings.ToLower(l.String()) {
			return l, nil
		}
	}
	if name == "" {
		return LevelInfo, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var current atomic.Pointer[slog.Logger]

// Init replaces the package logger. format "json" writes JSON lines,
// anything else logfmt-style text.
func Init(level LogLevel, output io.Writer, format string) {
	opts := &slog.HandlerOptions{Level: slog.Level(level)}

	var handler slog.Handler = slog.NewTextHandler(output, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	}

	logger := slog.New(handler)
	current.Store(logger)
	slog.SetDefault(logger)
}

// InitForCLI writes text logs at level to output, normally os.Stderr.
func InitForCLI(level LogLevel, output io.Writer) {
	Init(level, output, "text")
}

func logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	// Uninitialised use (library callers, early tests) falls back to stderr.
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	current.CompareAndSwap(nil, fallback)
	return current.Load()
}

func write(level LogLevel, subsystem string, err error, format string, args []interface{}) {
	l := logger()
	ctx := context.Background()
	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(ctx, slog.Level(level), msg, attrs...)
}

// Debug logs at debug level.
func Debug(subsystem, format string, args ...interface{}) {
	write(LevelDebug, subsystem, nil, format, args)
}

// Info logs at info level.
func Info(subsystem, format string, args ...interface{}) {
	write(LevelInfo, subsystem, nil, format, args)
}

// Warn logs at warn level.
func Warn(subsystem, format string, args ...interface{}) {
	write(LevelWarn, subsystem, nil, format, args)
}

// Error logs err at error level. err may be nil.
func Error(subsystem string, err error, format string, args ...interface{}) {
	write(LevelError, subsystem, err, format, args)
}
