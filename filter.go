package hooter

import "github.com/dshills/hooter/pattern"

// Predicate decides whether a filtered view delivers an envelope.
// Return true to allow the event, false to filter it out.
type Predicate func(e *Event) bool

// TypeMatches creates a predicate that allows events whose type matches
// the wildcard pattern under the given separator.
func TypeMatches(pat, sep string) Predicate {
	return func(e *Event) bool {
		return pattern.Match(e.Type, pat, sep)
	}
}

// And combines predicates; all must pass for the event to be delivered.
func And(preds ...Predicate) Predicate {
	return func(e *Event) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates; at least one must pass.
func Or(preds ...Predicate) Predicate {
	return func(e *Event) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(e *Event) bool {
		return !p(e)
	}
}
