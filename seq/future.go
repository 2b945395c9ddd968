package seq

import (
	"context"
	"runtime/debug"
	"sync"
)

// Future is a minimal awaitable: a value or error that becomes available
// once. Hooks return a *Future to signal asynchronous completion; the
// runner awaits it under the async and auto modes and passes it through
// untouched under sync and asIs.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

// NewFuture creates an unsettled future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved creates a future already settled with a value.
func Resolved(v any) *Future {
	f := NewFuture()
	f.Resolve(v)
	return f
}

// Rejected creates a future already settled with an error.
func Rejected(err error) *Future {
	f := NewFuture()
	f.Reject(err)
	return f
}

// Resolve settles the future with a value. Only the first settlement wins;
// later Resolve/Reject calls are no-ops.
func (f *Future) Resolve(v any) {
	f.settle(v, nil)
}

// Reject settles the future with an error.
func (f *Future) Reject(err error) {
	f.settle(nil, err)
}

func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled returns true if the future has resolved or rejected.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future settles and returns its value or error.
// A future that never settles blocks forever; use WaitContext to bound it.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}

// WaitContext blocks until the future settles or the context is done.
func (f *Future) WaitContext(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Go runs fn on its own goroutine and returns a future settled with its
// result. A panic inside fn rejects the future with a *PanicError instead
// of killing the process, so the failure surfaces to whoever awaits.
func Go(fn func() (any, error)) *Future {
	f := NewFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Reject(&PanicError{Value: r, Stack: debug.Stack()})
			}
		}()
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}
