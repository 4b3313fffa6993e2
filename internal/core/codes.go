package core

// codes.go recognizes the three ISO 3166-1 code shapes.
//
// Shape validation is format only: "ZZ" is a well-formed alpha-2 code even
// though no country uses it. Whether a record exists is the repository's
// concern. The three shapes are mutually exclusive by construction (two
// letters, three letters, three digits), so the order in which Classify tries
// them does not change its answer.

import (
	"context"
	"regexp"
)

var (
	alpha2Pattern  = regexp.MustCompile(`^[A-Z]{2}$`)
	alpha3Pattern  = regexp.MustCompile(`^[A-Z]{3}$`)
	numericPattern = regexp.MustCompile(`^[0-9]{3}$`)
)

// CodeKind identifies which shape a code string has.
type CodeKind int

const (
	KindUnknown CodeKind = iota
	KindAlpha2
	KindAlpha3
	KindNumeric
)

// String returns the field name used in error payloads and logs.
func (k CodeKind) String() string {
	switch k {
	case KindAlpha2:
		return "alpha2"
	case KindAlpha3:
		return "alpha3"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// IsAlpha2 reports whether code is exactly two uppercase ASCII letters.
func IsAlpha2(code string) bool {
	return alpha2Pattern.MatchString(code)
}

// IsAlpha3 reports whether code is exactly three uppercase ASCII letters.
func IsAlpha3(code string) bool {
	return alpha3Pattern.MatchString(code)
}

// IsNumeric reports whether code is exactly three decimal digits.
func IsNumeric(code string) bool {
	return numericPattern.MatchString(code)
}

// IsValidCode reports whether code has any of the three shapes.
func IsValidCode(code string) bool {
	return Classify(code) != KindUnknown
}

// Classify returns the shape of code, checking alpha-2, alpha-3 and numeric
// in that order.
func Classify(code string) CodeKind {
	switch {
	case IsAlpha2(code):
		return KindAlpha2
	case IsAlpha3(code):
		return KindAlpha3
	case IsNumeric(code):
		return KindNumeric
	default:
		return KindUnknown
	}
}

// Resolve classifies code and performs the matching lookup.
// It returns ErrNotFound when the code has no recognizable shape or when no
// record matches; callers that need to tell those apart validate first.
func Resolve(ctx context.Context, repo Repository, code string) (*Country, error) {
	switch Classify(code) {
	case KindAlpha2:
		return repo.SelectByAlpha2(ctx, code)
	case KindAlpha3:
		return repo.SelectByAlpha3(ctx, code)
	case KindNumeric:
		return repo.SelectByNumeric(ctx, code)
	default:
		return nil, ErrNotFound
	}
}
