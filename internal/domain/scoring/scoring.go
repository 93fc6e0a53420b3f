// Package scoring holds the training score model and the qualification gate.
package scoring

import (
	"iter"
	"math"
	"strconv"
)

// Weights of the two assessment components in the final score.
const (
	PracticalWeight = 0.6
	TheoryWeight    = 0.4
)

// Thresholds applied to the final score.
const (
	// QualifyingThreshold is inclusive: a score of exactly 70 qualifies.
	QualifyingThreshold = 70.0
	// DistinctionThreshold is exclusive: only scores above 90 earn distinction.
	DistinctionThreshold = 90.0
)

// Scored is anything carrying a final score.
type Scored interface {
	FinalScore() float64
}

// Final computes the weighted final score at full precision.
func Final(theory, practical float64) float64 {
	return practical*PracticalWeight + theory*TheoryWeight
}

// Format renders a score for people: one decimal place, with exact
// midpoints rounded away from zero (92.25 -> "92.3").
// Stored scores are never rounded; only their presentation is.
func Format(score float64) string {
	// A float64 sits exactly halfway between two tenths only when its
	// fraction is .25 or .75, i.e. score*4 is an odd integer. FormatFloat
	// rounds those to even; everything else it already rounds correctly.
	if q := score * 4; q == math.Trunc(q) && math.Mod(q, 2) != 0 {
		score = math.Round(score*10) / 10
	}
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// Qualifies reports whether score meets min (inclusive).
func Qualifies(score, min float64) bool {
	return score >= min
}

// Qualifying yields the elements of seq whose final score meets min,
// preserving order.
func Qualifying[T Scored](seq iter.Seq[T], min float64) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if !Qualifies(v.FinalScore(), min) {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Distinguished reports whether score earns the distinction tier.
func Distinguished(score float64) bool {
	return score > DistinctionThreshold
}
