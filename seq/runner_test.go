package seq

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects call markers across goroutines.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) mark(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func marker(rec *recorder, name string, result any) Fn {
	return func(args ...any) (any, error) {
		rec.mark(name)
		return result, nil
	}
}

func TestRunner_RunSync(t *testing.T) {
	r := NewRunner(Config{})
	rec := &recorder{}

	got, err := r.RunSync([]Fn{
		marker(rec, "h1", 1),
		marker(rec, "h2", 2),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, got, "result is the last fn's value")
	assert.Equal(t, []string{"h1", "h2"}, rec.snapshot())
}

func TestRunner_RunSync_ErrorAborts(t *testing.T) {
	r := NewRunner(Config{})
	rec := &recorder{}
	boom := errors.New("boom")

	got, err := r.RunSync([]Fn{
		marker(rec, "h1", 1),
		func(args ...any) (any, error) { return nil, boom },
		marker(rec, "h3", 3),
	}, nil)

	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
	assert.Equal(t, []string{"h1"}, rec.snapshot(), "h3 must not run after a failure")
}

func TestRunner_RunSync_DoesNotAwait(t *testing.T) {
	r := NewRunner(Config{})
	settled := NewFuture()

	// A hook returning an unsettled future must not block sync sequencing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := r.RunSync([]Fn{
			func(args ...any) (any, error) { return settled, nil },
			func(args ...any) (any, error) { return "after", nil },
		}, nil)
		assert.NoError(t, err)
		assert.Equal(t, "after", got)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSync awaited an asynchronous hook")
	}
	settled.Resolve(nil)
}

func TestRunner_RunSync_ArgsForwarded(t *testing.T) {
	r := NewRunner(Config{})
	var got []any

	_, err := r.RunSync([]Fn{
		func(args ...any) (any, error) {
			got = args
			return nil, nil
		},
	}, []any{42, "x"})

	require.NoError(t, err)
	assert.Equal(t, []any{42, "x"}, got)
}

func TestRunner_RunAsync_AwaitsInOrder(t *testing.T) {
	r := NewRunner(Config{})
	rec := &recorder{}

	fut := r.RunAsync([]Fn{
		func(args ...any) (any, error) {
			rec.mark("h1.call")
			return Go(func() (any, error) {
				time.Sleep(10 * time.Millisecond)
				rec.mark("h1.done")
				return "one", nil
			}), nil
		},
		func(args ...any) (any, error) {
			rec.mark("h2")
			return "two", nil
		},
	}, nil)

	got, err := fut.Wait()
	require.NoError(t, err)
	assert.Equal(t, "two", got)
	assert.Equal(t, []string{"h1.call", "h1.done", "h2"}, rec.snapshot(),
		"h2 must start only after h1's future settles")
}

func TestRunner_RunAsync_Rejection(t *testing.T) {
	r := NewRunner(Config{})
	rec := &recorder{}
	boom := errors.New("boom")

	fut := r.RunAsync([]Fn{
		func(args ...any) (any, error) { return Rejected(boom), nil },
		marker(rec, "h2", nil),
	}, nil)

	_, err := fut.Wait()
	require.ErrorIs(t, err, boom)
	assert.Empty(t, rec.snapshot(), "rejection skips remaining fns")
}

func TestRunner_RunAsync_PanicRejects(t *testing.T) {
	r := NewRunner(Config{})

	fut := r.RunAsync([]Fn{
		func(args ...any) (any, error) { panic("kaboom") },
	}, nil)

	_, err := fut.Wait()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

func TestRunner_RunAuto_AllSync(t *testing.T) {
	r := NewRunner(Config{})
	rec := &recorder{}

	got, err := r.RunAuto([]Fn{
		marker(rec, "h1", 1),
		marker(rec, "h2", 2),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, got, "no awaitable means a plain value result")
	assert.Equal(t, []string{"h1", "h2"}, rec.snapshot())
}

func TestRunner_RunAuto_Promotes(t *testing.T) {
	r := NewRunner(Config{})
	rec := &recorder{}

	got, err := r.RunAuto([]Fn{
		marker(rec, "h1", 1),
		func(args ...any) (any, error) {
			rec.mark("h2.call")
			return Go(func() (any, error) {
				time.Sleep(10 * time.Millisecond)
				rec.mark("h2.done")
				return "mid", nil
			}), nil
		},
		marker(rec, "h3", "last"),
	}, nil)

	require.NoError(t, err)
	fut, ok := got.(*Future)
	require.True(t, ok, "an awaitable hook promotes the run to a future")

	v, err := fut.Wait()
	require.NoError(t, err)
	assert.Equal(t, "last", v)
	assert.Equal(t, []string{"h1", "h2.call", "h2.done", "h3"}, rec.snapshot())
}

func TestRunner_RunAsIs_RawPassThrough(t *testing.T) {
	r := NewRunner(Config{})
	pending := NewFuture()

	got, err := r.RunAsIs([]Fn{
		func(args ...any) (any, error) { return 1, nil },
		func(args ...any) (any, error) { return pending, nil },
		func(args ...any) (any, error) { return "three", nil },
	}, nil)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0])
	assert.Same(t, pending, got[1], "futures pass through uninspected")
	assert.Equal(t, "three", got[2])
	assert.False(t, pending.Settled())
}

func TestRunner_CustomDetect(t *testing.T) {
	// Detect result channels in addition to futures.
	r := NewRunner(Config{
		Detect: func(v any) (*Future, bool) {
			if ch, ok := v.(chan any); ok {
				f := NewFuture()
				go func() { f.Resolve(<-ch) }()
				return f, true
			}
			return DefaultDetect(v)
		},
	})

	ch := make(chan any, 1)
	ch <- "from channel"

	got, err := r.RunAuto([]Fn{
		func(args ...any) (any, error) { return ch, nil },
	}, nil)

	require.NoError(t, err)
	fut, ok := got.(*Future)
	require.True(t, ok)
	v, err := fut.Wait()
	require.NoError(t, err)
	assert.Equal(t, "from channel", v)
}

func TestRunner_EmptyList(t *testing.T) {
	r := NewRunner(Config{})

	got, err := r.RunSync(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	results, err := r.RunAsIs(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
