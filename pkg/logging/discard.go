package logging

import "log/slog"

// NewNullLogger returns a logger that drops every record.
// It is the default when logging is not configured.
func NewNullLogger() Logger {
	return &SlogLogger{logger: slog.New(slog.DiscardHandler)}
}
