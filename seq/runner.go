// Package seq sequences ordered lists of functions under the four bus
// execution modes: sync, async, auto, and asIs. It is the capability the
// bus core delegates actual hook invocation to; the core builds the
// invocation list, this package decides how it runs.
package seq

import (
	"fmt"
	"runtime/debug"
)

// Fn is one entry of an invocation list. The bus binds each hook to its
// envelope before handing it over, so the runner only sees the positional
// arguments.
type Fn func(args ...any) (any, error)

// Config configures a Runner. It is forwarded verbatim from bus
// construction.
type Config struct {
	// Detect reports whether a function's return value represents
	// asynchronous work and, if so, converts it to a Future to await.
	// The default detects *Future values. Replacing it allows hooks to
	// return other awaitable shapes (e.g. result channels).
	Detect func(v any) (*Future, bool)
}

// DefaultDetect is the default awaitable detection: *Future values only.
func DefaultDetect(v any) (*Future, bool) {
	f, ok := v.(*Future)
	return f, ok
}

// Runner executes invocation lists under the four modes.
type Runner struct {
	detect func(v any) (*Future, bool)
}

// NewRunner creates a runner with the given configuration.
func NewRunner(cfg Config) *Runner {
	detect := cfg.Detect
	if detect == nil {
		detect = DefaultDetect
	}
	return &Runner{detect: detect}
}

// PanicError wraps a panic raised inside an asynchronously executed
// function, carrying the recovered value and stack.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during sequenced call: %v", e.Value)
}

// RunSync calls each function sequentially in the caller's goroutine.
// Returned awaitables are not awaited: any late effects are the caller's
// problem. The result is the last function's return value. An error stops
// the remaining functions and propagates. A panic propagates up the
// caller's stack untouched.
func (r *Runner) RunSync(fns []Fn, args []any) (any, error) {
	var last any
	for _, fn := range fns {
		v, err := fn(args...)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// RunAsync returns a future that resolves only after every function has
// been called and, when a call returned an awaitable, that awaitable has
// settled, in list order. The first error or rejection rejects the future
// and skips the rest. The future resolves with the last settled value.
func (r *Runner) RunAsync(fns []Fn, args []any) *Future {
	out := NewFuture()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				out.Reject(&PanicError{Value: rec, Stack: debug.Stack()})
			}
		}()
		last, err := r.awaitAll(fns, args, nil)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(last)
	}()
	return out
}

// RunAuto runs functions synchronously until one returns an awaitable,
// then promotes the remainder of the list onto a future that awaits each
// subsequent result in order. When nothing asynchronous happens the plain
// last value is returned; otherwise the result is the promoted *Future.
func (r *Runner) RunAuto(fns []Fn, args []any) (any, error) {
	var last any
	for i, fn := range fns {
		v, err := fn(args...)
		if err != nil {
			return nil, err
		}
		if fut, ok := r.detect(v); ok {
			return r.promote(fut, fns[i+1:], args), nil
		}
		last = v
	}
	return last, nil
}

// promote continues an auto run asynchronously, first awaiting pending,
// then running the remaining functions with awaiting, as RunAsync would.
func (r *Runner) promote(pending *Future, rest []Fn, args []any) *Future {
	out := NewFuture()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				out.Reject(&PanicError{Value: rec, Stack: debug.Stack()})
			}
		}()
		last, err := r.awaitAll(rest, args, pending)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(last)
	}()
	return out
}

// awaitAll awaits pending (if any), then runs each fn, awaiting detected
// awaitables, and returns the last settled value.
func (r *Runner) awaitAll(fns []Fn, args []any, pending *Future) (any, error) {
	var last any
	if pending != nil {
		v, err := pending.Wait()
		if err != nil {
			return nil, err
		}
		last = v
	}
	for _, fn := range fns {
		v, err := fn(args...)
		if err != nil {
			return nil, err
		}
		if fut, ok := r.detect(v); ok {
			v, err = fut.Wait()
			if err != nil {
				return nil, err
			}
		}
		last = v
	}
	return last, nil
}

// RunAsIs calls each function raw and collects every return value
// untouched, with no awaitable inspection or coercion at all. An error
// stops the remaining functions and propagates.
func (r *Runner) RunAsIs(fns []Fn, args []any) ([]any, error) {
	results := make([]any, 0, len(fns))
	for _, fn := range fns {
		v, err := fn(args...)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}
