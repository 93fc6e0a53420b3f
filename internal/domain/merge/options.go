package merge

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithPhone sets the contact phone printed on every document.
func WithPhone(phone string) Option {
	return func(r *Resolver) {
		if phone != "" {
			r.phone = phone
		}
	}
}

// WithEmailDomain sets the domain appended to the given name.
func WithEmailDomain(domain string) Option {
	return func(r *Resolver) {
		if domain != "" {
			r.emailDomain = domain
		}
	}
}

// WithBodies overrides the message texts. The distinction text may embed
// ScoreToken. Empty values keep the defaults.
func WithBodies(distinction, standard string) Option {
	return func(r *Resolver) {
		if distinction != "" {
			r.distinctionBody = distinction
		}
		if standard != "" {
			r.standardBody = standard
		}
	}
}
