package logger

import (
	"io"
	"time"
)

// Option applies a configuration option to the ActivityLog.
type Option func(*ActivityLog)

// WithFile sets the log file destination. It is truncated on open.
func WithFile(path string) Option {
	return func(a *ActivityLog) {
		a.path = path
	}
}

// WithConsole sets the console mirror; nil disables it.
func WithConsole(w io.Writer) Option {
	return func(a *ActivityLog) {
		a.console = w
	}
}

// WithSource appends the calling file:line to every entry.
func WithSource(enabled bool) Option {
	return func(a *ActivityLog) {
		a.source = enabled
	}
}

// WithClock sets the clock used for the file header.
func WithClock(now func() time.Time) Option {
	return func(a *ActivityLog) {
		if now != nil {
			a.now = now
		}
	}
}
