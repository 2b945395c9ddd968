package hooter

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/hooter/broadcast"
	"github.com/dshills/hooter/pattern"
	"github.com/dshills/hooter/seq"
)

// Sequencer is the contract the bus needs from the sequencing capability:
// run an invocation list under one of the four modes. seq.Runner is the
// default implementation.
type Sequencer interface {
	// RunSync calls each fn sequentially; awaitables are not awaited.
	RunSync(fns []seq.Fn, args []any) (any, error)

	// RunAsync awaits each fn's result in order on a returned future.
	RunAsync(fns []seq.Fn, args []any) *seq.Future

	// RunAuto runs synchronously until a fn returns an awaitable, then
	// promotes the remainder onto a future.
	RunAuto(fns []seq.Fn, args []any) (any, error)

	// RunAsIs calls each fn raw and passes every return value through.
	RunAsIs(fns []seq.Fn, args []any) ([]any, error)
}

// Hooter is the event bus. A plain bus owns the terminal broadcast; a bus
// derived via Prefix or Filter delegates emission to its source while
// owning its own hook stores and event registry.
type Hooter struct {
	sep    string
	logger *log.Logger
	seq    Sequencer

	// Three phase stores. The after store retrieves in reverse insertion
	// order: last registered, first to run.
	before *HookStore
	main   *HookStore
	after  *HookStore

	// Registered event types with fixed modes.
	mu     sync.RWMutex
	events map[string]Mode

	// root is non-nil only on the terminal owner of the broadcast.
	root   *broadcast.Broadcaster
	stream broadcast.Stream

	// Derivation state. source is nil on a plain bus.
	source *Hooter
	prefix string

	emitted   atomic.Uint64
	hooksRun  atomic.Uint64
	delivered atomic.Uint64
}

// New creates a plain bus. Options forward sequencing configuration
// verbatim to the sequencer constructor.
func New(opts ...Option) *Hooter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sequencer := cfg.sequencer
	if sequencer == nil {
		sequencer = seq.NewRunner(cfg.seqConfig)
	}

	root := broadcast.New(broadcast.Config{
		Buffer: cfg.broadcastBuffer,
		Logger: cfg.logger,
	})

	h := &Hooter{
		sep:    cfg.sep,
		logger: cfg.logger,
		seq:    sequencer,
		events: make(map[string]Mode),
		root:   root,
		stream: root,
	}
	h.initStores()
	return h
}

// newDerived creates a bus that delegates emission to source.
func newDerived(source *Hooter, prefix string, stream broadcast.Stream) *Hooter {
	h := &Hooter{
		sep:    source.sep,
		logger: source.logger,
		seq:    source.seq,
		events: make(map[string]Mode),
		stream: stream,
		source: source,
		prefix: prefix,
	}
	h.initStores()
	return h
}

func (h *Hooter) initStores() {
	h.before = NewHookStore(h.sep, false)
	h.main = NewHookStore(h.sep, false)
	h.after = NewHookStore(h.sep, true)
}

// Separator returns the segment separator this bus matches with.
func (h *Hooter) Separator() string {
	return h.sep
}

// Hook registers a main-phase hook matching every event type.
func (h *Hooter) Hook(fn HookFunc) (HookID, error) {
	return h.HookOn(pattern.All, fn)
}

// HookOn registers a main-phase hook under a wildcard pattern.
func (h *Hooter) HookOn(pat string, fn HookFunc) (HookID, error) {
	return h.put(h.main, "main", pat, fn)
}

// HookStart registers a before-phase hook matching every event type.
func (h *Hooter) HookStart(fn HookFunc) (HookID, error) {
	return h.HookStartOn(pattern.All, fn)
}

// HookStartOn registers a before-phase hook under a wildcard pattern.
func (h *Hooter) HookStartOn(pat string, fn HookFunc) (HookID, error) {
	return h.put(h.before, "before", pat, fn)
}

// HookEnd registers an after-phase hook matching every event type.
// After-phase hooks run last-registered-first.
func (h *Hooter) HookEnd(fn HookFunc) (HookID, error) {
	return h.HookEndOn(pattern.All, fn)
}

// HookEndOn registers an after-phase hook under a wildcard pattern.
func (h *Hooter) HookEndOn(pat string, fn HookFunc) (HookID, error) {
	return h.put(h.after, "after", pat, fn)
}

func (h *Hooter) put(store *HookStore, phase, pat string, fn HookFunc) (HookID, error) {
	id, err := store.Put(pat, fn)
	if err != nil {
		return "", err
	}
	h.logger.Debug("hook registered", "phase", phase, "pattern", pat, "id", id)
	return id, nil
}

// Unhook removes the id from all three phase stores unconditionally.
// It is idempotent and silent when the id is absent.
func (h *Hooter) Unhook(id HookID) {
	removed := h.before.Del(id)
	removed = h.main.Del(id) || removed
	removed = h.after.Del(id) || removed
	if removed {
		h.logger.Debug("hook removed", "id", id)
	}
}

// Register binds an event type to a fixed mode for this bus instance's
// lifetime. Emissions of a registered type must not supply an explicit
// mode. Validation happens before any mutation.
func (h *Hooter) Register(eventType string, mode Mode) error {
	if eventType == "" {
		return ErrEmptyType
	}
	if !mode.IsValid() {
		return &ModeError{Mode: string(mode)}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.events[eventType]; ok {
		return &RegistrationError{EventType: eventType, Err: ErrAlreadyRegistered}
	}
	h.events[eventType] = mode

	h.logger.Debug("event registered", "type", eventType, "mode", mode)
	return nil
}

// Registered returns the fixed mode for an event type, if registered.
func (h *Hooter) Registered(eventType string) (Mode, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	mode, ok := h.events[eventType]
	return mode, ok
}

// resolveMode determines the execution mode for an emission. A registered
// type uses its fixed mode and rejects any explicit override; otherwise
// the explicit mode is used, defaulting to auto. Unknown explicit modes
// pass through here and are rejected by the entry point's own envelope
// validation.
func (h *Hooter) resolveMode(eventType string, explicit Mode) (Mode, error) {
	h.mu.RLock()
	registered, ok := h.events[eventType]
	h.mu.RUnlock()

	if ok {
		if explicit != ModeNone {
			return ModeNone, &RegistrationError{EventType: eventType, Err: ErrModeOverride}
		}
		return registered, nil
	}
	if explicit == ModeNone {
		return ModeAuto, nil
	}
	return explicit, nil
}

// toot resolves the mode, builds the envelope, and submits it to Next.
func (h *Hooter) toot(eventType string, explicit Mode, cb HookFunc, args []any) (any, error) {
	mode, err := h.resolveMode(eventType, explicit)
	if err != nil {
		return nil, err
	}
	return h.Next(&Event{Type: eventType, Mode: mode, Args: args, Cb: cb})
}

// Toot emits an event with no explicit mode: a registered type uses its
// fixed mode, anything else defaults to auto.
func (h *Hooter) Toot(eventType string, args ...any) (any, error) {
	return h.toot(eventType, ModeNone, nil, args)
}

// TootWith is Toot with a completion callback appended as the final entry
// of the invocation list.
func (h *Hooter) TootWith(eventType string, cb HookFunc, args ...any) (any, error) {
	return h.toot(eventType, ModeNone, cb, args)
}

// TootAuto emits with an explicit auto mode. Unlike Toot, this is an
// override and therefore fails on registered event types.
func (h *Hooter) TootAuto(eventType string, args ...any) (any, error) {
	return h.toot(eventType, ModeAuto, nil, args)
}

// TootAutoWith is TootAuto with a completion callback.
func (h *Hooter) TootAutoWith(eventType string, cb HookFunc, args ...any) (any, error) {
	return h.toot(eventType, ModeAuto, cb, args)
}

// TootAsIs emits with raw pass-through sequencing.
func (h *Hooter) TootAsIs(eventType string, args ...any) (any, error) {
	return h.toot(eventType, ModeAsIs, nil, args)
}

// TootAsIsWith is TootAsIs with a completion callback.
func (h *Hooter) TootAsIsWith(eventType string, cb HookFunc, args ...any) (any, error) {
	return h.toot(eventType, ModeAsIs, cb, args)
}

// TootSync emits with forced synchronous sequencing.
func (h *Hooter) TootSync(eventType string, args ...any) (any, error) {
	return h.toot(eventType, ModeSync, nil, args)
}

// TootSyncWith is TootSync with a completion callback.
func (h *Hooter) TootSyncWith(eventType string, cb HookFunc, args ...any) (any, error) {
	return h.toot(eventType, ModeSync, cb, args)
}

// TootAsync emits with forced awaiting sequencing. The result is a
// *seq.Future.
func (h *Hooter) TootAsync(eventType string, args ...any) (any, error) {
	return h.toot(eventType, ModeAsync, nil, args)
}

// TootAsyncWith is TootAsync with a completion callback.
func (h *Hooter) TootAsyncWith(eventType string, cb HookFunc, args ...any) (any, error) {
	return h.toot(eventType, ModeAsync, cb, args)
}

// Next is the dispatch entry point, called for every emission whether
// user-invoked or hook-invoked downstream. The pipeline:
//
//  1. validate envelope shape
//  2. rewrite the type on a shallow copy when this bus carries a prefix
//  3. forward to the source when this bus delegates (local stores are
//     bypassed; they apply only on the terminal broadcast owner)
//  4. broadcast to subscribers
//  5. collect before, main, after hooks, bind them to the envelope,
//     append the completion callback
//  6. an empty invocation list returns immediately
//  7. otherwise hand the list to the sequencer for the envelope's mode
//     and pass its result through untouched
func (h *Hooter) Next(e *Event) (any, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	if h.prefix != "" {
		e = e.withPrefix(h.prefix, h.sep)
	}
	if h.source != nil {
		return h.source.Next(e)
	}

	h.emitted.Add(1)
	h.root.Publish(e)
	h.delivered.Add(uint64(h.root.Len()))

	fns := h.collect(e)
	if len(fns) == 0 {
		return nil, nil
	}
	h.hooksRun.Add(uint64(len(fns)))
	h.logger.Debug("dispatch", "type", e.Type, "mode", e.Mode, "hooks", len(fns))

	switch e.Mode {
	case ModeSync:
		return h.seq.RunSync(fns, e.Args)
	case ModeAsync:
		return h.seq.RunAsync(fns, e.Args), nil
	case ModeAsIs:
		results, err := h.seq.RunAsIs(fns, e.Args)
		if err != nil {
			return nil, err
		}
		return results, nil
	default:
		return h.seq.RunAuto(fns, e.Args)
	}
}

// collect builds the combined invocation list for one emission: before,
// then main, then after phase, each in its store's configured order, with
// the completion callback last. The list is a snapshot; registration
// changes during an in-flight emission do not affect it.
func (h *Hooter) collect(e *Event) []seq.Fn {
	var fns []seq.Fn
	for _, hk := range h.before.Get(e.Type) {
		fns = append(fns, bind(hk.Fn, e))
	}
	for _, hk := range h.main.Get(e.Type) {
		fns = append(fns, bind(hk.Fn, e))
	}
	for _, hk := range h.after.Get(e.Type) {
		fns = append(fns, bind(hk.Fn, e))
	}
	if e.Cb != nil {
		fns = append(fns, bind(e.Cb, e))
	}
	return fns
}

// bind fixes a hook to its envelope, leaving only the positional
// arguments for the sequencer to supply.
func bind(fn HookFunc, e *Event) seq.Fn {
	return func(args ...any) (any, error) {
		return fn(e, args...)
	}
}

// Prefix returns a derived bus that rewrites outgoing event types to
// p + separator + type and delegates broadcast to this bus. The derived
// bus owns independent hook stores and an independent event registry.
func (h *Hooter) Prefix(p string) (*Hooter, error) {
	if p == "" {
		return nil, ErrEmptyPrefix
	}
	return newDerived(h, p, h.stream), nil
}

// Filter returns a derived view whose subscribers only receive envelopes
// satisfying the predicate. Hooks on the source are unaffected; emission
// through the view forwards to the source unchanged.
func (h *Hooter) Filter(pred Predicate) (*Hooter, error) {
	if pred == nil {
		return nil, ErrNilPredicate
	}
	stream := h.stream.Derive(func(v any) (any, bool) {
		e, ok := v.(*Event)
		if !ok {
			return nil, false
		}
		return e, pred(e)
	})
	return newDerived(h, "", stream), nil
}

// FilterPattern is Filter with wildcard-pattern sugar: the view receives
// envelopes whose type matches the pattern.
func (h *Hooter) FilterPattern(pat string) (*Hooter, error) {
	if pat == "" {
		return nil, ErrEmptyPattern
	}
	return h.Filter(TypeMatches(pat, h.sep))
}

// Subscribe registers an observer for every envelope this bus delivers
// (after any view filtering). The returned disposer unsubscribes.
func (h *Hooter) Subscribe(fn func(e *Event)) func() {
	return h.stream.SubscribeFunc(func(v any) {
		if e, ok := v.(*Event); ok {
			fn(e)
		}
	})
}

// SubscribeObserver registers a broadcast.Observer directly; observers
// implementing the optional error/complete interfaces also receive
// terminal signals.
func (h *Hooter) SubscribeObserver(obs broadcast.Observer) func() {
	return h.stream.Subscribe(obs)
}

// Error terminally fails the broadcast, delegated to the root of the
// derivation chain.
func (h *Hooter) Error(err error) {
	h.stream.Error(err)
}

// Complete terminally completes the broadcast, delegated to the root of
// the derivation chain.
func (h *Hooter) Complete() {
	h.stream.Complete()
}

// Broadcaster returns the terminal broadcaster, walking the derivation
// chain to its root.
func (h *Hooter) Broadcaster() *broadcast.Broadcaster {
	b := h
	for b.source != nil {
		b = b.source
	}
	return b.root
}

// Stats contains bus counters.
type Stats struct {
	// Emitted is the number of envelopes that reached the terminal
	// broadcast through this bus.
	Emitted uint64

	// HooksRun is the number of invocation-list entries handed to the
	// sequencer.
	HooksRun uint64

	// Delivered is the number of observer deliveries.
	Delivered uint64

	// Hooks is the current number of hooks across the three stores.
	Hooks int
}

// Stats returns current counters for this bus instance.
func (h *Hooter) Stats() Stats {
	return Stats{
		Emitted:   h.emitted.Load(),
		HooksRun:  h.hooksRun.Load(),
		Delivered: h.delivered.Load(),
		Hooks:     h.before.Len() + h.main.Len() + h.after.Len(),
	}
}
