// Package logger provides the process activity log: structured entries,
// timestamped, written to a log file and mirrored to the console.
//
// There is no package-level logger. Build one with New at startup and
// pass it to whatever needs it.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Constants for logging operations.
const (
	callerSkipFrames = 3 // getCaller -> log -> logging method -> actual caller
	timeLayout       = "2006-01-02 15:04:05"
	filePerm         = 0o644
)

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
	With(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

// slogLogger implements Logger using slog.
type slogLogger struct {
	Logger     *slog.Logger
	withSource bool
}

func (l *slogLogger) Named(name string) Logger {
	return &slogLogger{Logger: l.Logger.With(slog.String("component", name)), withSource: l.withSource}
}

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{Logger: slog.New(l.Logger.Handler().WithAttrs(convertFields(fields))), withSource: l.withSource}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !l.Logger.Enabled(ctx, level) {
		return
	}
	if l.withSource {
		fields = append(fields, String("source", getCaller()))
	}
	l.Logger.LogAttrs(ctx, level, msg, convertFields(fields)...)
}

// convertFields converts our Field type to slog.Attr.
func convertFields(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// ActivityLog is the run's single log sink. It is safe for concurrent use.
type ActivityLog struct {
	*slogLogger

	level   *slog.LevelVar
	file    *lenientFile
	path    string
	console io.Writer
	source  bool
	now     func() time.Time
	openErr error
}

// New creates the activity log. When a log file is configured it is
// truncated and stamped with a start header; if it cannot be opened the
// log keeps writing to the console and OpenErr reports why.
func New(opts ...Option) *ActivityLog {
	a := &ActivityLog{
		level:   new(slog.LevelVar),
		console: os.Stdout,
		now:     time.Now,
	}
	a.level.Set(slog.LevelInfo)

	for _, opt := range opts {
		opt(a)
	}

	// The file goes first: it never fails, so a broken console cannot
	// starve it.
	sinks := []io.Writer{}
	if a.path != "" {
		f, err := os.OpenFile(a.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
		if err != nil {
			a.openErr = fmt.Errorf("open log file: %w", err)
		} else {
			a.file = &lenientFile{f: f}
			_, _ = fmt.Fprintf(a.file, "--- Process Started: %s ---\n", a.now().Format(timeLayout))
			sinks = append(sinks, a.file)
		}
	}
	if a.console != nil {
		sinks = append(sinks, a.console)
	}

	h := slog.NewTextHandler(io.MultiWriter(sinks...), &slog.HandlerOptions{
		Level: a.level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime {
				attr.Value = slog.StringValue(attr.Value.Time().Format(timeLayout))
			}
			return attr
		},
	})
	a.slogLogger = &slogLogger{Logger: slog.New(h), withSource: a.source}
	return a
}

// OpenErr reports why the log file could not be opened, if it could not.
func (a *ActivityLog) OpenErr() error {
	return a.openErr
}

// WriteErr reports the first failed write to the log file. Write
// failures never reach callers of the logging methods.
func (a *ActivityLog) WriteErr() error {
	if a.file == nil {
		return nil
	}
	return a.file.firstErr()
}

// Path returns the log file path, or "" when logging to the console only.
func (a *ActivityLog) Path() string {
	if a.file == nil {
		return ""
	}
	return a.path
}

// SetLevel updates the current logging level.
func (a *ActivityLog) SetLevel(level slog.Level) { a.level.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func (a *ActivityLog) SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		a.SetLevel(slog.LevelDebug)
	case "", "info":
		a.SetLevel(slog.LevelInfo)
	case "warn", "warning":
		a.SetLevel(slog.LevelWarn)
	case "error":
		a.SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// Sync flushes the log file to stable storage.
func (a *ActivityLog) Sync() error {
	if a.file == nil {
		return nil
	}
	return a.file.f.Sync()
}

// Close closes the log file. Entries logged afterwards still reach the console.
func (a *ActivityLog) Close() error {
	if a.file == nil {
		return nil
	}
	return a.file.close()
}

// lenientFile swallows write errors so a broken log file cannot stop the
// console mirror or the run. The first error is kept for inspection.
type lenientFile struct {
	mu     sync.Mutex
	f      *os.File
	closed bool
	err    error
}

func (l *lenientFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return len(p), nil
	}
	if _, err := l.f.Write(p); err != nil && l.err == nil {
		l.err = err
	}
	return len(p), nil
}

func (l *lenientFile) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.f.Close()
}

func (l *lenientFile) firstErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// getCaller returns the caller location in format relative/path/file.go:line (IDE-friendly).
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	relPath, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	return fmt.Sprintf("%s:%d", relPath, line)
}
