package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_DeliveryOrder(t *testing.T) {
	b := New(Config{})
	defer b.Close()

	var calls []string
	b.SubscribeFunc(func(v any) { calls = append(calls, "first") })
	b.SubscribeFunc(func(v any) { calls = append(calls, "second") })
	b.SubscribeFunc(func(v any) { calls = append(calls, "third") })

	b.Publish("x")

	assert.Equal(t, []string{"first", "second", "third"}, calls,
		"delivery follows subscription order")
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := New(Config{})
	defer b.Close()

	var got []any
	dispose := b.SubscribeFunc(func(v any) { got = append(got, v) })

	b.Publish(1)
	dispose()
	b.Publish(2)
	dispose() // second call is harmless

	assert.Equal(t, []any{1}, got)
	assert.Equal(t, 0, b.Len())
}

func TestBroadcaster_PanicIsolation(t *testing.T) {
	b := New(Config{})
	defer b.Close()

	var delivered bool
	b.SubscribeFunc(func(v any) { panic("bad observer") })
	b.SubscribeFunc(func(v any) { delivered = true })

	b.Publish("x")

	assert.True(t, delivered, "a panicking observer must not block later observers")
}

// terminalObserver records events plus terminal signals.
type terminalObserver struct {
	events    []any
	err       error
	completed bool
}

func (o *terminalObserver) OnEvent(v any)     { o.events = append(o.events, v) }
func (o *terminalObserver) OnError(err error) { o.err = err }
func (o *terminalObserver) OnComplete()       { o.completed = true }

func TestBroadcaster_Error(t *testing.T) {
	b := New(Config{})
	obs := &terminalObserver{}
	b.Subscribe(obs)

	boom := errors.New("boom")
	b.Error(boom)

	assert.ErrorIs(t, obs.err, boom)

	// The stream is terminal: publishes are dropped, subscriptions refused.
	b.Publish("late")
	assert.Empty(t, obs.events)

	var late bool
	b.SubscribeFunc(func(v any) { late = true })
	b.Publish("later")
	assert.False(t, late)
}

func TestBroadcaster_Complete(t *testing.T) {
	b := New(Config{})
	obs := &terminalObserver{}
	b.Subscribe(obs)

	b.Complete()
	assert.True(t, obs.completed)

	// A second terminal signal is a no-op.
	obs.completed = false
	b.Complete()
	assert.False(t, obs.completed)
}

func TestView_FiltersAndMaps(t *testing.T) {
	b := New(Config{})
	defer b.Close()

	evens := b.Derive(func(v any) (any, bool) {
		n, ok := v.(int)
		return n * 10, ok && n%2 == 0
	})

	var all, filtered []any
	b.SubscribeFunc(func(v any) { all = append(all, v) })
	evens.SubscribeFunc(func(v any) { filtered = append(filtered, v) })

	for i := 1; i <= 4; i++ {
		b.Publish(i)
	}

	assert.Equal(t, []any{1, 2, 3, 4}, all)
	assert.Equal(t, []any{20, 40}, filtered, "view transforms and filters")
}

func TestView_Chained(t *testing.T) {
	b := New(Config{})
	defer b.Close()

	big := b.Derive(func(v any) (any, bool) {
		n, ok := v.(int)
		return n, ok && n > 10
	})
	bigEven := big.Derive(func(v any) (any, bool) {
		n := v.(int)
		return n, n%2 == 0
	})

	var got []any
	bigEven.SubscribeFunc(func(v any) { got = append(got, v) })

	for _, n := range []int{4, 11, 12, 20, 7} {
		b.Publish(n)
	}

	assert.Equal(t, []any{12, 20}, got)
}

func TestView_TerminalDelegatesToRoot(t *testing.T) {
	b := New(Config{})
	view := b.Derive(func(v any) (any, bool) { return v, true })

	rootObs := &terminalObserver{}
	viewObs := &terminalObserver{}
	b.Subscribe(rootObs)
	view.Subscribe(viewObs)

	view.Complete()

	assert.True(t, rootObs.completed, "view Complete reaches the root")
	assert.True(t, viewObs.completed, "terminal signals pass through the view")
}

func TestBroadcaster_Mirror(t *testing.T) {
	b := New(Config{})
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := b.PubSub().Subscribe(ctx, EventsTopic)
	require.NoError(t, err)

	b.Publish(meta{"user.created"})

	select {
	case msg := <-msgs:
		assert.Equal(t, "user.created", msg.Metadata.Get("type"))
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no mirror message on the gochannel")
	}
}

type meta struct{ typ string }

func (m meta) BroadcastMetadata() map[string]string {
	return map[string]string{"type": m.typ}
}
