package hooter

// Event is the envelope describing one emission.
// Events are immutable once created: derivation (prefix rewriting) always
// produces a new shallow copy, never mutates the original.
type Event struct {
	// Type is the concrete event type (e.g. "user.created").
	Type string

	// Mode is the execution mode resolved for this emission.
	Mode Mode

	// Args are the positional arguments passed to every hook.
	Args []any

	// Cb is an optional completion callback, invoked after all hooks
	// as the final entry of the invocation list. Nil means absent.
	Cb HookFunc
}

// NewEvent creates an envelope with no mode set. The toot shorthands
// resolve the mode before dispatch; envelopes handed directly to Next
// must carry one of the four recognized modes.
func NewEvent(eventType string, args ...any) *Event {
	return &Event{
		Type: eventType,
		Args: args,
	}
}

// BroadcastMetadata describes the envelope for the broadcast mirror.
func (e *Event) BroadcastMetadata() map[string]string {
	return map[string]string{
		"type": e.Type,
		"mode": string(e.Mode),
	}
}

// withPrefix returns a shallow copy with the type rewritten to
// prefix + sep + original type.
func (e *Event) withPrefix(prefix, sep string) *Event {
	c := *e
	c.Type = prefix + sep + e.Type
	return &c
}

// validate checks envelope shape. It is called at the dispatch entry
// point before any store is read or mutated.
func (e *Event) validate() error {
	if e == nil {
		return ErrNilEvent
	}
	if e.Type == "" {
		return ErrEmptyType
	}
	if !e.Mode.IsValid() {
		return &ModeError{Mode: string(e.Mode)}
	}
	return nil
}
