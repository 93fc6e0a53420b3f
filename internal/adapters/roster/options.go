package roster

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithStrictScores rejects lines whose score columns are not integers
// instead of scoring them as zero.
func WithStrictScores(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithDelimiter sets the column separator. Empty values are ignored.
func WithDelimiter(delimiter string) Option {
	return func(p *Parser) {
		if delimiter != "" {
			p.delimiter = delimiter
		}
	}
}
