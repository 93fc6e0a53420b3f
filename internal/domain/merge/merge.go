// Package merge resolves the merge fields a certificate template is filled with.
package merge

import (
	"strings"

	"github.com/okian/certify/internal/domain/model"
	"github.com/okian/certify/internal/domain/scoring"
)

// Merge field names recognised in templates.
const (
	FieldFullName   = "FullName"
	FieldDepartment = "Department"
	FieldPhone      = "Phone"
	FieldEmail      = "Email"
	FieldBodyText   = "BodyText"
)

// Defaults for the fixed, non-derived fields.
const (
	DefaultPhone       = "050-0000000"
	DefaultEmailDomain = "gmail.com"

	// ScoreToken is replaced with the formatted final score in the
	// distinction message.
	ScoreToken = "{score}"

	DefaultDistinctionBody = "הרינו להודיעך כי עברת בהצלחה את ההכשרה. הציון הסופי שלך הינו " + ScoreToken + ".\n" +
		"נמצאת מתאימ/ה לתפקיד מוביל/ה טכנולוגי מחלקתית"
	DefaultStandardBody = "הרינו להודיעך כי לא עברת את ההכשרה אך לצערנו לא נמצא תפקיד מתאים עבורך."
)

// Fields maps a merge field name to its rendered value.
type Fields map[string]string

// Resolver builds Fields for qualifying records.
type Resolver struct {
	phone           string
	emailDomain     string
	distinctionBody string
	standardBody    string
}

// NewResolver creates a Resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		phone:           DefaultPhone,
		emailDomain:     DefaultEmailDomain,
		distinctionBody: DefaultDistinctionBody,
		standardBody:    DefaultStandardBody,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve maps one record to a fresh set of merge fields.
func (r *Resolver) Resolve(rec model.Record) Fields {
	return Fields{
		FieldFullName:   rec.IdentityKey(),
		FieldDepartment: rec.Department(),
		FieldPhone:      r.phone,
		FieldEmail:      rec.GivenName() + "@" + r.emailDomain,
		FieldBodyText:   r.Body(rec.FinalScore()),
	}
}

// Body picks the message for a final score. The standard message is used
// for every score up to and including the distinction threshold, even
// though all resolved records have already qualified.
func (r *Resolver) Body(score float64) string {
	if scoring.Distinguished(score) {
		return strings.ReplaceAll(r.distinctionBody, ScoreToken, scoring.Format(score))
	}
	return r.standardBody
}
