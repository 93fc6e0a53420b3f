// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/certify/internal/domain/scoring"
)

// Record is one normalized employee entry derived from one roster line.
// It is immutable once constructed; the final score is always derived from
// the two component scores and never stored on its own.
type Record struct {
	givenName  string
	familyName string
	department string
	theory     float64
	practical  float64
	line       int // 1-based source line, 0 when unknown
}

// NewRecord normalizes raw column values into a Record.
func NewRecord(givenName, familyName, department string, theory, practical float64) Record {
	return Record{
		givenName:  TitleCase(strings.TrimSpace(givenName)),
		familyName: TitleCase(strings.TrimSpace(familyName)),
		department: strings.TrimSpace(department),
		theory:     theory,
		practical:  practical,
	}
}

// WithLine returns a copy of r annotated with its source line.
func (r Record) WithLine(line int) Record {
	r.line = line
	return r
}

func (r Record) GivenName() string       { return r.givenName }
func (r Record) FamilyName() string      { return r.familyName }
func (r Record) Department() string      { return r.department }
func (r Record) TheoryScore() float64    { return r.theory }
func (r Record) PracticalScore() float64 { return r.practical }
func (r Record) Line() int               { return r.line }

// IdentityKey is "Given Family"; it doubles as the display name.
func (r Record) IdentityKey() string {
	return r.givenName + " " + r.familyName
}

// FinalScore recomputes the weighted score from the component scores.
func (r Record) FinalScore() float64 {
	return scoring.Final(r.theory, r.practical)
}

// TitleCase upper-cases the first rune and lower-cases the rest.
// The empty string is returned unchanged.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
