package pool

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// WaitOutcome tags the result of Handle.WaitFor.
type WaitOutcome int

const (
	// WaitReady means the task completed and Value holds its result.
	WaitReady WaitOutcome = iota
	// WaitTimeout means the duration elapsed with no outcome published yet.
	// The handle is untouched and may be waited on again.
	WaitTimeout
	// WaitFailed means the task (or the handle itself) produced an error;
	// see WaitResult.Err.
	WaitFailed
)

// WaitResult is the tagged outcome returned by Handle.WaitFor.
type WaitResult[T any] struct {
	Outcome WaitOutcome
	Value   T
	Err     error
}

// Handle is a single-consumer result handle: a future for the outcome of
// exactly one submitted task. It is created paired with a unit of work at
// submission time and remains valid even if the pool is torn down before
// the caller observes it; if its unit was still queued at teardown,
// reading it surfaces ErrAbandoned.
//
// A Handle supports exactly one successful consumption, by Get, TryGet, or
// WaitFor. Consuming the outcome invalidates the handle; a later read
// returns ErrBadAccess instead of the original outcome.
type Handle[T any] struct {
	id       uuid.UUID
	result   chan result[T]
	consumed atomic.Bool
}

type result[T any] struct {
	value T
	err   error
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{
		id:     uuid.New(),
		result: make(chan result[T], 1),
	}
}

// ID returns the handle's submission identifier, stable for its lifetime.
func (h *Handle[T]) ID() uuid.UUID {
	return h.id
}

// deliver publishes the task's outcome. Called once by whichever of
// invoke or abandon claims the paired unit, and once more, with
// ErrBadAccess, for each invoke of an already-claimed unit.
func (h *Handle[T]) deliver(value T, err error) {
	h.result <- result[T]{value: value, err: err}
}

// Get blocks until the outcome is published and returns it, re-raising a
// captured UserFailure or ErrAbandoned as err. Calling Get a second time,
// or after the outcome was already consumed via TryGet/WaitFor, returns
// ErrBadAccess.
func (h *Handle[T]) Get() (T, error) {
	if h.consumed.Load() {
		var zero T
		return zero, ErrBadAccess
	}
	r := <-h.result
	h.consumed.Store(true)
	return r.value, r.err
}

// TryGet returns the outcome without blocking. The final bool reports
// whether an outcome was available; when false, the handle is untouched
// and may be read again later.
func (h *Handle[T]) TryGet() (T, error, bool) {
	if h.consumed.Load() {
		var zero T
		return zero, ErrBadAccess, true
	}
	select {
	case r := <-h.result:
		h.consumed.Store(true)
		return r.value, r.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// WaitFor blocks for at most d waiting for the outcome. It returns
// WaitTimeout (not an error) if d elapses first, leaving the handle
// available for a later call.
func (h *Handle[T]) WaitFor(d time.Duration) WaitResult[T] {
	if h.consumed.Load() {
		return WaitResult[T]{Outcome: WaitFailed, Err: ErrBadAccess}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case r := <-h.result:
		h.consumed.Store(true)
		if r.err != nil {
			return WaitResult[T]{Outcome: WaitFailed, Err: r.err}
		}
		return WaitResult[T]{Outcome: WaitReady, Value: r.value}
	case <-timer.C:
		return WaitResult[T]{Outcome: WaitTimeout}
	}
}
