package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arjunv/taskforge/internal/backoff"
)

// Pool owns a fixed-size array of worker goroutines and an equal-sized
// array of per-worker queues, one-to-one. Once constructed, queues and
// workers are never resized; a Pool cannot be cloned.
//
// Pool is deliberately not generic: a single Pool instance services
// closures of arbitrary, heterogeneous return types, each type-erased
// into a unitOfWork before it ever reaches a queue. Submit is a
// package-level generic function rather than a method because Go methods
// cannot introduce type parameters beyond the receiver's.
type Pool struct {
	cfg    *config
	queues []*workerQueue
	exited []atomic.Bool

	inFlight atomic.Int64
	nextIdx  atomic.Uint64
	done     atomic.Bool

	group *errgroup.Group
}

// New constructs a Pool and starts its workers. It does not return until
// every worker goroutine has been launched. Worker count defaults to
// runtime.GOMAXPROCS(0) and is clamped to at least 1; override it with
// WithWorkerCount.
func New(opts ...Option) *Pool {
	cfg := buildConfig(opts)
	p := &Pool{cfg: cfg}
	p.start()
	return p
}

func (p *Pool) start() {
	n := p.cfg.workerCount
	p.queues = make([]*workerQueue, n)
	for i := range p.queues {
		p.queues[i] = newWorkerQueue()
	}
	p.exited = make([]atomic.Bool, n)
	p.inFlight.Store(0)
	p.done.Store(false)

	g, _ := errgroup.WithContext(context.Background())
	p.group = g

	var launched sync.WaitGroup
	launched.Add(n)
	for id := 0; id < n; id++ {
		id := id
		g.Go(func() error {
			launched.Done()
			return p.runWorker(id)
		})
	}
	launched.Wait()
}

// Submit type-erases fn, pairs it with a fresh Handle, and enqueues it.
// It implements the pool's submission routing: starting from a
// monotonically increasing round-robin index, it attempts 10*N
// non-blocking try-pushes across queues before falling back to a single
// blocking push. Apart from waiting on a limiter set with
// WithSubmitRateLimit, Submit never blocks beyond the cost of that one
// fallback lock acquisition.
//
// Calling Submit after Done panics with ErrSubmitAfterDone: submitting
// after shutdown has been requested is a programmer error, not a runtime
// failure, and must not corrupt the pool's state.
func Submit[T any](p *Pool, fn func() (T, error)) *Handle[T] {
	if p.done.Load() {
		panic(ErrSubmitAfterDone)
	}

	if p.cfg.rateLimiter != nil {
		_ = p.cfg.rateLimiter.Wait(context.Background())
	}

	handle := newHandle[T]()
	u := newUnit(fn, handle)

	n := len(p.queues)
	start := int(p.nextIdx.Add(1) - 1)
	attempts := 10 * n

	for k := 0; k < attempts; k++ {
		p.inFlight.Add(1)
		idx := (start + k) % n
		if p.queues[idx].tryPush(u) {
			return handle
		}
		p.inFlight.Add(-1)
	}

	p.inFlight.Add(1)
	p.queues[start%n].push(u)
	return handle
}

// Done signals every queue that no further work will be submitted.
// Idempotent: calling it more than once has no further effect.
func (p *Pool) Done() {
	if !p.done.CompareAndSwap(false, true) {
		return
	}
	for _, q := range p.queues {
		q.setDone()
	}
}

// WaitToCompletion blocks until the in-flight counter reaches zero and
// every worker has observed termination. It is separate from Close so a
// submitter can drain the pool without tearing it down, and can be
// called again after Reset.
//
// It busy-waits with scheduler yields between checks, backed off
// according to the configured completion-backoff curve (see
// WithCompletionBackoff), rather than a dedicated condition variable.
func (p *Pool) WaitToCompletion() {
	strategy := backoff.NewBackoffStrategy(
		p.cfg.waitBackoffType, p.cfg.waitInitialDelay, p.cfg.waitMaxDelay, 0.2,
	)
	defer strategy.Reset()

	for attempt := 0; ; attempt++ {
		if p.inFlight.Load() == 0 && p.allExited() {
			return
		}
		time.Sleep(strategy.NextDelay(attempt, nil))
	}
}

// Reset joins all workers, abandons any units still queued (possible
// under WithFastShutdown), discards the existing queues, and spawns N
// fresh workers with a zeroed in-flight counter, allowing the Pool to be
// reused after a Done/WaitToCompletion cycle.
//
// Reset is not synchronized against concurrent Submit calls: calling it
// while other goroutines may still be submitting is a logic error and is
// the caller's responsibility to avoid, exactly as calling it before Done
// has been observed by every worker is.
func (p *Pool) Reset() error {
	if !p.done.Load() {
		return ErrResetWhileSubmitting
	}
	if err := p.group.Wait(); err != nil {
		return err
	}
	p.abandonQueued()
	p.start()
	return nil
}

// Close signals shutdown, drops any units still sitting in a queue as
// Abandoned, and joins every worker. Without WithFastShutdown the workers
// drain every queue before they exit, so units queued when Close is
// called are invoked rather than abandoned; leftovers occur only under
// WithFastShutdown.
//
// Under WithFastShutdown, Close does not wait for a worker that is
// currently invoking a task: that is the entire point of fast shutdown,
// and a task that never returns (the blocked-forever case spec S6
// describes) would otherwise make Close hang forever right when prompt
// shutdown was requested. Joining still happens, just in the
// background, so a worker's goroutine is not abandoned once its task
// does eventually return. Without WithFastShutdown, Close joins every
// worker before returning, since the default strategy's correctness
// assumes submitted tasks terminate.
func (p *Pool) Close() error {
	p.Done()

	if p.cfg.fastShutdown {
		go func() { _ = p.group.Wait() }()
		p.abandonQueued()
		return nil
	}

	err := p.group.Wait()
	p.abandonQueued()
	return err
}

func (p *Pool) abandonQueued() {
	for _, q := range p.queues {
		for _, u := range q.drain() {
			u.abandon()
		}
	}
}

// Stats reports the current worker count and number of units submitted
// but not yet fully invoked.
func (p *Pool) Stats() (workers int, inFlight int64) {
	return len(p.queues), p.inFlight.Load()
}

func (p *Pool) allExited() bool {
	for i := range p.exited {
		if !p.exited[i].Load() {
			return false
		}
	}
	return true
}

func (p *Pool) markExited(id int) {
	p.exited[id].Store(true)
}
