package domain

import "strings"

// NormalizeName trims whitespace and case-folds a name. A nil input stays
// nil; an empty string after trimming is still a valid, if degenerate,
// normalized value.
func NormalizeName(s *string) *string {
	if s == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*s))
	return &normalized
}

// NormalizeNameValue is NormalizeName for callers that already hold a value.
func NormalizeNameValue(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DeriveDecade buckets a release year into its ten-year period. It must be
// recomputed on every write; stored decades are never trusted from input.
func DeriveDecade(year *int) *int {
	if year == nil {
		return nil
	}
	y := *year
	decade := y / 10 * 10
	if y < 0 && y%10 != 0 {
		decade -= 10
	}
	return &decade
}
