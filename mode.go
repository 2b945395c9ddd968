package hooter

// Mode is the execution discipline applied to the combined hook list
// for one emission.
type Mode string

const (
	// ModeNone means the caller supplied no mode. It is resolved to the
	// registered mode for registered event types, or ModeAuto otherwise.
	// It is never valid on an envelope reaching dispatch.
	ModeNone Mode = ""

	// ModeAuto defers the sync/async decision to the sequencer, per hook,
	// based on whether the hook returned an awaitable value.
	ModeAuto Mode = "auto"

	// ModeAsIs invokes hooks raw: return values pass through without the
	// sequencer imposing sync or async semantics.
	ModeAsIs Mode = "asIs"

	// ModeSync forces purely synchronous sequential invocation. A hook
	// that behaves asynchronously is not awaited.
	ModeSync Mode = "sync"

	// ModeAsync forces each hook's result to be awaited before the next
	// hook runs, even if synchronous.
	ModeAsync Mode = "async"
)

// Modes lists the four recognized modes.
var Modes = []Mode{ModeAuto, ModeAsIs, ModeSync, ModeAsync}

// IsValid returns true if the mode is one of the four recognized values.
// Mode values are case-sensitive.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAuto, ModeAsIs, ModeSync, ModeAsync:
		return true
	default:
		return false
	}
}

// String returns the mode as a string.
func (m Mode) String() string {
	return string(m)
}
