// Package pattern implements segment-wildcard matching for event types.
//
// Event types are hierarchical strings using a single-character separator
// (default "."), e.g. "user.created" or "billing.invoice.paid". A pattern
// is an event type that may additionally contain wildcards:
//
//	*    matches exactly one segment
//	**   matches zero or more segments at its position
//
// So "user.*" matches "user.created" but not "user.created.v2", while
// "user.**" matches both, as well as "user" itself.
package pattern

import "strings"

// Wildcard constants.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// DefaultSeparator is the default segment separator.
	DefaultSeparator = "."
)

// All is the pattern that matches every event type.
const All = WildcardMulti

// Pattern is a wildcard string matched against concrete event types.
type Pattern string

// String returns the pattern as a string.
func (p Pattern) String() string {
	return string(p)
}

// Segments returns the pattern split by the separator.
func (p Pattern) Segments(sep string) []string {
	return Split(string(p), sep)
}

// IsWildcard returns true if the pattern contains any wildcard segment.
func (p Pattern) IsWildcard(sep string) bool {
	for _, seg := range p.Segments(sep) {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// IsValid returns true if the pattern is well formed.
// A valid pattern:
//   - Is not empty
//   - Does not start or end with the separator
//   - Does not contain empty segments
func (p Pattern) IsValid(sep string) bool {
	s := string(p)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, sep) || strings.HasSuffix(s, sep) {
		return false
	}
	return !strings.Contains(s, sep+sep)
}

// Matches returns true if the concrete event type matches this pattern.
func (p Pattern) Matches(eventType string, sep string) bool {
	return Match(eventType, string(p), sep)
}

// Match reports whether the concrete event type matches the pattern under
// the segment-wildcard rule. Both strings are segmented by sep once, then
// matched with backtracking over * and **.
func Match(eventType, pat string, sep string) bool {
	return matchSegments(Split(eventType, sep), Split(pat, sep))
}

// matchSegments performs recursive pattern matching on type segments.
func matchSegments(typ, pat []string) bool {
	ti, pi := 0, 0

	for pi < len(pat) {
		if pat[pi] == WildcardMulti {
			// ** matches zero or more segments.
			// Try matching 0, 1, 2, ... remaining type segments.
			for ti <= len(typ) {
				if matchSegments(typ[ti:], pat[pi+1:]) {
					return true
				}
				ti++
			}
			return false
		}

		// Need a type segment to match against.
		if ti >= len(typ) {
			return false
		}

		if pat[pi] == WildcardSingle {
			// * matches exactly one segment.
			ti++
			pi++
		} else if pat[pi] == typ[ti] {
			ti++
			pi++
		} else {
			return false
		}
	}

	// Pattern consumed - type must also be consumed.
	return ti == len(typ)
}

// Join joins segments into a single pattern string.
func Join(sep string, segments ...string) string {
	return strings.Join(segments, sep)
}

// Split splits a pattern or event type string into segments.
func Split(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
