// Package hooter provides a typed, prefixable event bus.
//
// Callers register interceptor functions ("hooks") against wildcard
// event-type patterns in three ordered phases and emit events ("toots")
// whose matched hooks run under one of four execution modes. The bus
// itself only matches, orders, and composes; actual delivery and
// invocation are delegated to two narrow capabilities, the broadcast and
// seq subpackages.
//
// # Event Types and Patterns
//
// Event types are hierarchical strings with dot notation:
//
//	user.created
//	billing.invoice.paid
//
// Hook patterns may contain wildcards:
//
//	user.*      - matches user.created, user.deleted (one segment)
//	user.**     - matches user, user.created, user.a.b.c (any depth)
//	*.created   - matches user.created, order.created
//	**          - matches everything
//
// The separator is configurable per bus via WithSeparator.
//
// # Phases
//
// Hooks register into one of three phases that run in a fixed order for
// every emission:
//
//	before  (HookStart) - insertion order
//	main    (Hook)      - insertion order
//	after   (HookEnd)   - reverse insertion order, teardown-style
//
// A completion callback supplied via a *With emission runs after all
// three phases as the final entry of the invocation list.
//
// # Execution Modes
//
// The combined hook list for one emission runs under a mode:
//
//   - sync: sequential calls; a hook that behaves asynchronously is not
//     awaited
//   - async: each hook's result is awaited before the next hook runs; the
//     emission returns a *seq.Future
//   - auto: synchronous until a hook returns an awaitable, then the
//     remainder is awaited on a promoted future
//   - asIs: raw pass-through of every hook's return value
//
// An event type can be registered with a fixed mode via Register; an
// explicit mode on a registered type's emission is an error, raised
// before any hook runs.
//
// # Derivation
//
// Prefix returns a bus that rewrites outgoing event types and delegates
// broadcast to its source:
//
//	billing, _ := bus.Prefix("billing")
//	billing.Toot("charged", 42) // source sees "billing.charged"
//
// Filter (or FilterPattern) returns a view whose subscribers only receive
// matching envelopes. Derived buses own independent hook stores: hooks
// registered on a derived bus never fire for emissions, since dispatch
// happens on the terminal broadcast owner.
//
// # Errors
//
// Malformed arguments and mode conflicts fail synchronously with sentinel
// errors before any state changes. Hook execution failures are not
// caught, logged, or transformed: they propagate to the toot caller
// through the sequencer's return value or future rejection.
package hooter
