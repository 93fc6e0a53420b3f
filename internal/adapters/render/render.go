// Package render defines the document renderer collaborator and ships a
// plain-text implementation of it.
//
// A renderer is a stateful session opened once per run and used
// sequentially; it is not safe for concurrent use. Callers must Close
// the session on every exit path.
package render

import (
	"context"
	"strings"

	"github.com/okian/certify/internal/domain/merge"
)

// Job describes one document to produce.
type Job struct {
	// Template references the template to open.
	Template string
	// OutputID names the output document; it is already safe for use as a
	// file name.
	OutputID string
	// Fields are substituted for the template's merge markers.
	Fields merge.Fields
}

// Session renders documents one at a time.
type Session interface {
	// Render opens the template, merges fields, exports the result and
	// closes the template again.
	Render(ctx context.Context, job Job) error
	// Close releases the session.
	Close() error
}

// Opener acquires renderer sessions.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context) (Session, error) { return f(ctx) }

// invalidNameChars are rejected in file names on at least one common
// filesystem. Output is meant to be copied around, so the strictest set wins.
const invalidNameChars = `<>:"/\|?*`

// SanitizeName replaces characters that are invalid in file names,
// including control characters, with an underscore.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(invalidNameChars, r) {
			return '_'
		}
		return r
	}, name)
}
