package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithSizeHint preallocates room for n distinct ids.
// Non-positive values are ignored.
func WithSizeHint(n int) Option {
	return func(d *inMemoryDeduper) {
		if n > 0 {
			d.sizeHint = n
		}
	}
}
