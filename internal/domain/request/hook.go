// Package request standardizes running one backend call per call site:
// loading/result/not-found state, error classification, and routing of
// failures to the transient error channel.
package request

import (
	"context"
	"reflect"
	"sync"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/notice"
)

// Operation is one backend call.
type Operation[T any] func(ctx context.Context) (T, error)

// Settled is the outcome of an operation that was started elsewhere.
type Settled[T any] struct {
	Value T
	Err   error
}

// Outcome is a snapshot of a Hook's state.
type Outcome[T any] struct {
	// Result is nil until an operation succeeds with a present value.
	Result   *T
	Loading  bool
	NotFound bool
}

// Hook tracks the state of the operations run through it. A Hook belongs to
// one call site and is never shared between call sites.
//
// Overlapping Run calls are allowed. Only the most recently started
// invocation commits its result, not-found flag and banner message; earlier
// ones still return their own value and error to their caller. Loading stays
// true while any invocation is in flight.
type Hook[T any] struct {
	notices *notice.Channel

	mu       sync.Mutex
	result   *T
	notFound bool
	inflight int
	gen      uint64
	closed   bool
	cancels  map[uint64]context.CancelFunc
	observer func(Outcome[T])
}

// New creates a Hook that reports failures to notices. A nil channel
// disables banner reporting.
func New[T any](notices *notice.Channel) *Hook[T] {
	return &Hook[T]{
		notices: notices,
		cancels: make(map[uint64]context.CancelFunc),
	}
}

// FromContext creates a Hook bound to the channel injected in ctx.
func FromContext[T any](ctx context.Context) *Hook[T] {
	return New[T](notice.MustFromContext(ctx))
}

// Run executes op exactly once.
//
// Before starting it sets loading, clears the not-found flag and clears the
// banner. On success the value is stored and returned. On failure a 404 sets
// the not-found flag; anything else pushes the most specific message to the
// banner. The original error is always returned unchanged so callers can
// layer their own handling on top. Loading is released on every exit path.
func (h *Hook[T]) Run(ctx context.Context, op Operation[T]) (T, error) {
	runCtx, gen := h.begin(ctx)
	defer h.end(gen)

	v, err := op(runCtx)
	h.settle(gen, v, err)
	return v, err
}

// RunValue runs the hook over a result that has already settled.
func (h *Hook[T]) RunValue(ctx context.Context, v T, err error) (T, error) {
	return h.Run(ctx, func(context.Context) (T, error) { return v, err })
}

// Await runs the hook over an operation that was already started. Waiting is
// bounded by ctx; a context error is classified like any other failure.
func (h *Hook[T]) Await(ctx context.Context, ch <-chan Settled[T]) (T, error) {
	return h.Run(ctx, func(ctx context.Context) (T, error) {
		select {
		case s := <-ch:
			return s.Value, s.Err
		case <-ctx.Done():
			var zero T
			return zero, &apierror.UnknownError{Raw: ctx.Err()}
		}
	})
}

// Reset clears the result, the not-found flag and the banner. Operations in
// flight at the time of Reset no longer commit.
func (h *Hook[T]) Reset() {
	h.mu.Lock()
	h.gen++
	h.result = nil
	h.notFound = false
	closed := h.closed
	h.mu.Unlock()

	if !closed && h.notices != nil {
		h.notices.Clear()
	}
	h.notify()
}

// Close detaches the hook from its call site. In-flight operations are
// cancelled and nothing they return is committed.
func (h *Hook[T]) Close() {
	h.mu.Lock()
	h.closed = true
	h.gen++
	cancels := h.cancels
	h.cancels = make(map[uint64]context.CancelFunc)
	h.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Snapshot returns the current state. Result points at a copy.
func (h *Hook[T]) Snapshot() Outcome[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Result returns the stored value and whether one is present.
func (h *Hook[T]) Result() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.result == nil {
		var zero T
		return zero, false
	}
	return *h.result, true
}

// Loading reports whether any operation is in flight.
func (h *Hook[T]) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inflight > 0
}

// NotFound reports whether the last committed failure was a 404.
func (h *Hook[T]) NotFound() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.notFound
}

// OnChange installs the single observer, replacing any previous one.
func (h *Hook[T]) OnChange(fn func(Outcome[T])) {
	h.mu.Lock()
	h.observer = fn
	h.mu.Unlock()
}

func (h *Hook[T]) begin(ctx context.Context) (context.Context, uint64) {
	runCtx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.inflight++
	closed := h.closed
	if closed {
		cancel()
	} else {
		h.notFound = false
		h.cancels[gen] = cancel
	}
	h.mu.Unlock()

	if !closed && h.notices != nil {
		h.notices.Clear()
	}
	h.notify()
	return runCtx, gen
}

func (h *Hook[T]) settle(gen uint64, v T, err error) {
	h.mu.Lock()
	if h.closed || gen != h.gen {
		h.mu.Unlock()
		return
	}

	var message string
	if err == nil {
		if isAbsent(v) {
			h.result = nil
		} else {
			h.result = &v
		}
	} else {
		c := apierror.Classify(err)
		if c.Kind == apierror.KindNotFound {
			h.notFound = true
		} else {
			message = c.Message
		}
	}
	h.mu.Unlock()

	if message != "" && h.notices != nil {
		h.notices.Set(message)
	}
	h.notify()
}

func (h *Hook[T]) end(gen uint64) {
	h.mu.Lock()
	h.inflight--
	if cancel, ok := h.cancels[gen]; ok {
		cancel()
		delete(h.cancels, gen)
	}
	h.mu.Unlock()

	h.notify()
}

func (h *Hook[T]) notify() {
	h.mu.Lock()
	fn := h.observer
	snap := h.snapshotLocked()
	h.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (h *Hook[T]) snapshotLocked() Outcome[T] {
	out := Outcome[T]{Loading: h.inflight > 0, NotFound: h.notFound}
	if h.result != nil {
		v := *h.result
		out.Result = &v
	}
	return out
}

// isAbsent reports whether v is a nil pointer, slice, map or interface.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
