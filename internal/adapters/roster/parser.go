// Package roster reads employee training rosters from delimited text.
//
// The first line is a header and is discarded. Every other line is
// split on the delimiter; lines that do not carry the five leading
// columns (given name, family name, department, theory score,
// practical score) or whose given name is blank are dropped without
// error. Extra trailing columns are ignored.
package roster

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/okian/certify/internal/domain/model"
)

// Column layout of a roster line.
const (
	colGivenName = iota
	colFamilyName
	colDepartment
	colTheory
	colPractical

	requiredColumns
)

const defaultDelimiter = ","

// Stats summarises one pass over a roster.
type Stats struct {
	Lines    int // data lines read, header excluded
	Accepted int
	Rejected int
}

// Parser yields Records from one reader, once.
type Parser struct {
	r         io.Reader
	delimiter string
	strict    bool

	consumed bool
	stats    Stats
	err      error
}

// NewParser creates a Parser over r with configuration options.
func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		r:         r,
		delimiter: defaultDelimiter,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Records returns a lazy single-pass sequence of accepted records.
// Only the first call reads; later calls yield nothing. Check Err once
// iteration is done.
func (p *Parser) Records() iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		if p.consumed {
			return
		}
		p.consumed = true

		// No line length cap: an oversized line is just another data
		// line and is rejected on its own.
		br := bufio.NewReader(p.r)
		line := 0
		for {
			text, err := br.ReadString('\n')
			if text != "" {
				line++
				if line > 1 { // line 1 is the header
					rec, ok := p.next(text)
					if ok && !yield(rec.WithLine(line)) {
						return
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					p.err = err
				}
				return
			}
		}
	}
}

// Err returns the first read error hit while iterating, if any.
// Rejected lines are not errors.
func (p *Parser) Err() error {
	return p.err
}

// Stats returns counters for the lines read so far.
func (p *Parser) Stats() Stats {
	return p.stats
}

// next parses one raw data line, newline included, and counts it.
func (p *Parser) next(raw string) (model.Record, bool) {
	p.stats.Lines++
	text := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	rec, ok := p.parseLine(text)
	if !ok {
		p.stats.Rejected++
		return model.Record{}, false
	}
	p.stats.Accepted++
	return rec, true
}

func (p *Parser) parseLine(text string) (model.Record, bool) {
	cols := strings.Split(text, p.delimiter)
	if len(cols) < requiredColumns {
		return model.Record{}, false
	}
	if strings.TrimSpace(cols[colGivenName]) == "" {
		return model.Record{}, false
	}

	theory, okTheory := p.parseScore(cols[colTheory])
	practical, okPractical := p.parseScore(cols[colPractical])
	if p.strict && (!okTheory || !okPractical) {
		return model.Record{}, false
	}

	return model.NewRecord(cols[colGivenName], cols[colFamilyName], cols[colDepartment], theory, practical), true
}

// parseScore returns the numeric value of raw and whether it parsed
// under the active policy. On failure the value is zero.
func (p *Parser) parseScore(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if p.strict {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
