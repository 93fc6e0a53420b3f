package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/okian/certify/internal/domain/merge"
)

// Marker delimiters recognised by the text renderer, e.g. {{FullName}}.
const (
	markerOpen  = "{{"
	markerClose = "}}"

	defaultExt = ".txt"
	outputPerm = 0o644
)

// TextRenderer is an Opener producing plain-text documents from a
// template with {{Field}} markers.
type TextRenderer struct {
	outputDir string
	ext       string
}

// NewTextRenderer creates a TextRenderer writing into outputDir.
func NewTextRenderer(outputDir string, opts ...TextOption) *TextRenderer {
	t := &TextRenderer{
		outputDir: outputDir,
		ext:       defaultExt,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// TextOption applies a configuration option to the TextRenderer.
type TextOption func(*TextRenderer)

// WithExtension sets the output file extension, e.g. ".txt".
func WithExtension(ext string) TextOption {
	return func(t *TextRenderer) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		t.ext = ext
	}
}

// Open verifies the output directory and starts a session.
func (t *TextRenderer) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(t.outputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrOutputDir, t.outputDir)
	}
	return &textSession{renderer: t}, nil
}

// OutputPath returns where a document with the given id is written.
func (t *TextRenderer) OutputPath(outputID string) string {
	return filepath.Join(t.outputDir, outputID+t.ext)
}

type textSession struct {
	mu       sync.Mutex
	renderer *TextRenderer
	closed   bool
}

// Render reads the template fresh for every job, so template edits
// between documents are picked up the way a re-opened document would be.
func (s *textSession) Render(ctx context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpl, err := os.ReadFile(job.Template)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	out := Merge(string(tmpl), job.Fields)
	if err := writeAtomic(s.renderer.OutputPath(job.OutputID), []byte(out)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExport, job.OutputID, err)
	}
	return nil
}

func (s *textSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Merge replaces {{Name}} markers whose trimmed name is a key of fields.
// Unknown names and unclosed markers are left as they are.
func Merge(tmpl string, fields merge.Fields) string {
	var out strings.Builder
	out.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, markerOpen)
		if start == -1 {
			out.WriteString(rest)
			return out.String()
		}
		end := strings.Index(rest[start+len(markerOpen):], markerClose)
		if end == -1 {
			out.WriteString(rest)
			return out.String()
		}
		end += start + len(markerOpen)

		out.WriteString(rest[:start])
		name := strings.TrimSpace(rest[start+len(markerOpen) : end])
		if value, ok := fields[name]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(rest[start : end+len(markerClose)])
		}
		rest = rest[end+len(markerClose):]
	}
}

// writeAtomic writes data next to path and renames it into place so a
// failed export never leaves a truncated document behind.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, outputPerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
