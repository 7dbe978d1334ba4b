package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	slogmulti "github.com/samber/slog-multi"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds configuration for the slog-backed logger
type Config struct {
	// Console receives human-oriented output (nil = os.Stderr)
	Console io.Writer
	// ConsoleFormat is the console output format (default text)
	ConsoleFormat Format
	// FilePath, when set, adds a JSON file sink
	FilePath string
	// Level is the minimum log level for every sink
	Level Level
}

// SlogLogger implements Logger on top of log/slog.
// Console and file sinks are fanned out with slog-multi.
type SlogLogger struct {
	logger *slog.Logger
	file   *os.File
	fields Fields
}

// New creates a logger from the configuration
func New(config Config) (*SlogLogger, error) {
	console := config.Console
	if console == nil {
		console = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: config.Level.slogLevel()}

	var consoleHandler slog.Handler
	if config.ConsoleFormat == FormatJSON {
		consoleHandler = slog.NewJSONHandler(console, opts)
	} else {
		consoleHandler = slog.NewTextHandler(console, opts)
	}

	if config.FilePath == "" {
		return &SlogLogger{logger: slog.New(consoleHandler)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileHandler := slog.NewJSONHandler(file, opts)
	return &SlogLogger{
		logger: slog.New(slogmulti.Fanout(consoleHandler, fileHandler)),
		file:   file,
	}, nil
}

// NewWithWriters creates a logger writing text to console and JSON to sink (for testing)
func NewWithWriters(console, sink io.Writer, level Level) *SlogLogger {
	opts := &slog.HandlerOptions{Level: level.slogLevel()}
	return &SlogLogger{
		logger: slog.New(slogmulti.Fanout(
			slog.NewTextHandler(console, opts),
			slog.NewJSONHandler(sink, opts),
		)),
	}
}

// Debug logs a debug message
func (l *SlogLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelDebug, msg, nil, fields)
}

// Info logs an info message
func (l *SlogLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelInfo, msg, nil, fields)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelWarn, msg, nil, fields)
}

// Error logs an error message
func (l *SlogLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ctx, slog.LevelError, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *SlogLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &SlogLogger{
		logger: l.logger,
		file:   l.file,
		fields: merged,
	}
}

// Close closes the log file, if any.
// Loggers derived through WithFields share the file; close the root only.
func (l *SlogLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *SlogLogger) log(ctx context.Context, level slog.Level, msg string, err error, fields Fields) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields)+1)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	attrs = appendFields(attrs, l.fields, fields)
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// appendFields adds fields in key order; later maps override earlier ones
func appendFields(attrs []slog.Attr, sets ...Fields) []slog.Attr {
	merged := make(Fields)
	for _, set := range sets {
		for k, v := range set {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, merged[k]))
	}
	return attrs
}
