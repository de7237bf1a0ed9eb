// Package pool provides a work-stealing task pool: a fixed-size group of
// worker goroutines, each draining its own FIFO queue and stealing from
// peers when its own queue runs dry, used to run heterogeneous one-shot
// closures behind a single type-erased queue element.
//
// The primary type is Pool, a non-generic scheduler of N workers and N
// queues. Submit is a package-level generic function, not a method,
// because closures of different return types all share one Pool
// instance:
//
//	p := pool.New(pool.WithWorkerCount(4))
//	handle := pool.Submit(p, func() (int, error) {
//	    return 40 + 2, nil
//	})
//	v, err := handle.Get() // v == 42
//
// # Submission routing
//
// Submit picks a round-robin starting queue, attempts 10*N non-blocking
// try-pushes across queues starting there, and falls back to a single
// blocking push on the starting queue if every attempt is contended.
// Workers mirror the same rotation on the pop side before falling back
// to a blocking pop on their own queue.
//
// # Shutdown
//
//	p.Done()               // no further submissions accepted
//	p.WaitToCompletion()    // blocks until every queued unit is invoked
//	err := p.Close()        // joins workers; abandons anything still queued
//
// Done followed by WaitToCompletion drains the pool without destroying
// it — Close only needs to be called once the Pool is no longer needed.
// By default a worker keeps stealing from peers after observing shutdown
// on its own queue until no work remains anywhere (see WithFastShutdown
// to opt out of that drain phase).
//
// # Result handles
//
// Handle[T] is a single-consumer future: Get blocks, TryGet polls
// without blocking, and WaitFor times out without disturbing the
// handle. A handle whose unit is dropped before invocation — pool
// shutdown with the unit still queued — surfaces ErrAbandoned instead of
// a value.
//
// # Configuration
//
//   - WithWorkerCount(n): set worker/queue count (default: GOMAXPROCS)
//   - WithSubmitRateLimit(r, burst): throttle the submission path only
//   - WithFastShutdown(): skip the post-Done drain phase (see the
//     WithFastShutdown docs on when this is safe)
//   - WithCompletionBackoff(kind, initial, max): tune WaitToCompletion's
//     spin-wait cadence
//
// # Error handling
//
// A panic or error raised inside a submitted closure is captured onto
// its Handle as a *UserFailure and never terminates the worker that
// caught it. Calling Submit after Done, or reusing a Handle after its
// outcome was already consumed, are programmer errors (ErrSubmitAfterDone,
// ErrBadAccess) rather than pool-state corruption.
package pool
