// Package broadcast provides the multicast capability underneath the bus:
// deliver a value to every active observer, in subscription order,
// synchronously, with per-observer panic isolation and terminal
// error/complete signaling.
//
// It keeps an explicit ordered registry of observers for delivery while
// running watermill's gochannel pub/sub as infrastructure underneath, the
// same split go-opencode uses: direct calls preserve type information and
// ordering, the gochannel carries a metadata mirror of every emission for
// middleware or a future distributed backend.
package broadcast

import (
	"io"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/charmbracelet/log"
)

// EventsTopic is the gochannel topic carrying the emission mirror.
const EventsTopic = "hooter.events"

// Observer receives broadcast values.
type Observer interface {
	// OnEvent is called once per delivered value.
	OnEvent(v any)
}

// ObserverFunc is a function adapter for Observer.
type ObserverFunc func(v any)

// OnEvent implements the Observer interface.
func (f ObserverFunc) OnEvent(v any) {
	f(v)
}

// ErrorObserver is optionally implemented by observers that want the
// terminal error signal.
type ErrorObserver interface {
	OnError(err error)
}

// CompleteObserver is optionally implemented by observers that want the
// terminal completion signal.
type CompleteObserver interface {
	OnComplete()
}

// Stream is the subscribable surface shared by a root Broadcaster and its
// derived views. Terminal signals on a view delegate to the root.
type Stream interface {
	// Subscribe registers an observer and returns its disposer.
	Subscribe(obs Observer) func()

	// SubscribeFunc registers a plain function observer.
	SubscribeFunc(fn func(v any)) func()

	// Error terminally fails the stream.
	Error(err error)

	// Complete terminally completes the stream.
	Complete()

	// Derive returns a child view whose observers receive transformed
	// values; returning ok=false drops the value for that view.
	Derive(transform func(v any) (any, bool)) Stream
}

// Metadater is implemented by broadcast values that can describe
// themselves for the gochannel mirror.
type Metadater interface {
	BroadcastMetadata() map[string]string
}

// Config configures a Broadcaster.
type Config struct {
	// Buffer is the gochannel output buffer size. Defaults to 100.
	Buffer int

	// Logger receives broadcast diagnostics. Defaults to a discard logger.
	Logger *log.Logger
}

// entry pairs an observer with its subscription id. Ids are monotonic, so
// slice order is subscription order.
type entry struct {
	id  uint64
	obs Observer
}

// Broadcaster is the root multicast mechanism.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   []entry
	nextID uint64
	closed bool

	pubsub *gochannel.GoChannel
	logger *log.Logger
}

// New creates a broadcaster.
func New(cfg Config) *Broadcaster {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 100
	}
	return &Broadcaster{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: int64(buffer),
				Persistent:          false,
			},
			NewLoggerAdapter(logger),
		),
		logger: logger,
	}
}

// Subscribe registers an observer. The returned disposer removes it;
// calling the disposer more than once is harmless. After a terminal
// signal, Subscribe returns a no-op disposer without registering.
func (b *Broadcaster) Subscribe(obs Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, entry{id: id, obs: obs})

	return func() {
		b.unsubscribe(id)
	}
}

// SubscribeFunc registers a plain function observer.
func (b *Broadcaster) SubscribeFunc(fn func(v any)) func() {
	return b.Subscribe(ObserverFunc(fn))
}

func (b *Broadcaster) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.subs {
		if e.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
}

// Publish delivers a value to all current observers in subscription
// order, synchronously. An observer that panics does not prevent delivery
// to subsequent observers. After a terminal signal, Publish is a no-op.
func (b *Broadcaster) Publish(v any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	observers := make([]Observer, len(b.subs))
	for i, e := range b.subs {
		observers[i] = e.obs
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		b.deliver(obs, v)
	}

	b.mirror(v)
}

// deliver invokes one observer with panic isolation.
func (b *Broadcaster) deliver(obs Observer, v any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("observer panicked", "recovered", r)
		}
	}()
	obs.OnEvent(v)
}

// mirror republishes the value's metadata onto the gochannel.
func (b *Broadcaster) mirror(v any) {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	if m, ok := v.(Metadater); ok {
		for k, val := range m.BroadcastMetadata() {
			msg.Metadata.Set(k, val)
		}
	}
	if err := b.pubsub.Publish(EventsTopic, msg); err != nil {
		b.logger.Debug("mirror publish failed", "err", err)
	}
}

// Error terminally fails the stream: observers implementing ErrorObserver
// receive err in subscription order, then the stream shuts down. Later
// Publish/Subscribe calls are no-ops.
func (b *Broadcaster) Error(err error) {
	for _, obs := range b.terminate() {
		if eo, ok := obs.(ErrorObserver); ok {
			b.deliverTerminal(func() { eo.OnError(err) })
		}
	}
}

// Complete terminally completes the stream: observers implementing
// CompleteObserver are notified in subscription order, then the stream
// shuts down.
func (b *Broadcaster) Complete() {
	for _, obs := range b.terminate() {
		if co, ok := obs.(CompleteObserver); ok {
			b.deliverTerminal(co.OnComplete)
		}
	}
}

// terminate marks the stream closed and returns the final observer
// snapshot. A second terminal signal returns nothing.
func (b *Broadcaster) terminate() []Observer {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	observers := make([]Observer, len(b.subs))
	for i, e := range b.subs {
		observers[i] = e.obs
	}
	b.subs = nil
	b.mu.Unlock()

	_ = b.pubsub.Close()
	return observers
}

func (b *Broadcaster) deliverTerminal(call func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("observer panicked on terminal signal", "recovered", r)
		}
	}()
	call()
}

// Close shuts the broadcaster down without signaling observers.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.subs = nil
	b.mu.Unlock()

	return b.pubsub.Close()
}

// Len returns the number of active observers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// PubSub returns the underlying gochannel carrying the emission mirror.
// It can be used for middleware, routing, or switching to a distributed
// backend.
func (b *Broadcaster) PubSub() *gochannel.GoChannel {
	return b.pubsub
}

// Derive returns a child view of this broadcaster.
func (b *Broadcaster) Derive(transform func(v any) (any, bool)) Stream {
	return &View{parent: b, transform: transform}
}

// View is a derived child of a Stream. It forwards subscriptions upstream
// and applies its transform to delivered values; terminal signals pass
// through to the root.
type View struct {
	parent    Stream
	transform func(v any) (any, bool)
}

// Subscribe registers the observer on the parent behind this view's
// transform.
func (v *View) Subscribe(obs Observer) func() {
	return v.parent.Subscribe(&viewObserver{obs: obs, transform: v.transform})
}

// SubscribeFunc registers a plain function observer.
func (v *View) SubscribeFunc(fn func(val any)) func() {
	return v.Subscribe(ObserverFunc(fn))
}

// Error delegates the terminal error signal to the root.
func (v *View) Error(err error) {
	v.parent.Error(err)
}

// Complete delegates the terminal completion signal to the root.
func (v *View) Complete() {
	v.parent.Complete()
}

// Derive stacks another view; transforms compose outside-in through the
// parent chain.
func (v *View) Derive(transform func(val any) (any, bool)) Stream {
	return &View{parent: v, transform: transform}
}

// viewObserver applies a transform before forwarding to the wrapped
// observer. Terminal signals forward regardless of the transform.
type viewObserver struct {
	obs       Observer
	transform func(v any) (any, bool)
}

func (o *viewObserver) OnEvent(v any) {
	out, ok := o.transform(v)
	if !ok {
		return
	}
	o.obs.OnEvent(out)
}

func (o *viewObserver) OnError(err error) {
	if eo, ok := o.obs.(ErrorObserver); ok {
		eo.OnError(err)
	}
}

func (o *viewObserver) OnComplete() {
	if co, ok := o.obs.(CompleteObserver); ok {
		co.OnComplete()
	}
}
