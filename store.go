package hooter

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/hooter/pattern"
)

// HookID uniquely identifies a hook registration for later removal.
type HookID string

// HookFunc is a registered hook. It receives the envelope of the emission
// that matched it and the emission's positional arguments. A non-nil error
// aborts the remaining hooks in the invocation list and propagates to the
// toot caller. The returned value may be a *seq.Future to signal
// asynchronous completion under the auto and async modes.
type HookFunc func(e *Event, args ...any) (any, error)

// Hook is one (pattern, fn) registration inside a HookStore.
type Hook struct {
	ID      HookID
	Pattern string
	Fn      HookFunc
}

// HookStore is an ordered collection of hooks keyed by wildcard pattern.
// Retrieval returns hooks whose pattern matches a concrete event type, in
// insertion order, or reverse insertion order for stores configured with
// reverse retrieval (the after-phase store: last registered, first to run).
// It is safe for concurrent use.
type HookStore struct {
	mu      sync.RWMutex
	hooks   []Hook
	byID    map[HookID]struct{}
	sep     string
	reverse bool
}

// NewHookStore creates a hook store. reverse controls retrieval order.
func NewHookStore(sep string, reverse bool) *HookStore {
	if sep == "" {
		sep = pattern.DefaultSeparator
	}
	return &HookStore{
		byID:    make(map[HookID]struct{}),
		sep:     sep,
		reverse: reverse,
	}
}

// Put appends a hook under the given pattern and returns its removal
// handle. The pattern must be non-empty and fn non-nil; no store state
// changes when validation fails.
func (s *HookStore) Put(pat string, fn HookFunc) (HookID, error) {
	if pat == "" {
		return "", ErrEmptyPattern
	}
	if fn == nil {
		return "", ErrNilHook
	}

	id := HookID(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, Hook{ID: id, Pattern: pat, Fn: fn})
	s.byID[id] = struct{}{}

	return id, nil
}

// Get returns every hook whose pattern matches the event type, in the
// store's configured order. Zero matches yields an empty result, never
// an error. The returned slice is a snapshot; later Put/Del calls do not
// affect it.
func (s *HookStore) Get(eventType string) []Hook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Hook
	for _, h := range s.hooks {
		if pattern.Match(eventType, h.Pattern, s.sep) {
			matched = append(matched, h)
		}
	}

	if s.reverse {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	return matched
}

// Del removes the hook with the given id. It is a silent no-op when the
// id is absent; the returned bool reports whether a hook was removed.
func (s *HookStore) Del(id HookID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)

	for i, h := range s.hooks {
		if h.ID == id {
			s.hooks = append(s.hooks[:i], s.hooks[i+1:]...)
			break
		}
	}
	return true
}

// Has returns true if the store holds a hook with the given id.
func (s *HookStore) Has(id HookID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[id]
	return ok
}

// Len returns the number of hooks in the store.
func (s *HookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.hooks)
}

// Patterns returns the stored patterns in insertion order, including
// duplicates registered under the same pattern.
func (s *HookStore) Patterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.hooks) == 0 {
		return nil
	}
	patterns := make([]string, len(s.hooks))
	for i, h := range s.hooks {
		patterns[i] = h.Pattern
	}
	return patterns
}
