package pool

import "runtime"

// runWorker is the body of worker id. It alternates between its own
// queue and stealing from peers, and never returns a non-nil error
// except for a failure that originates outside user code entirely (a
// condition the current implementation has no way to produce, since
// every task invocation is already panic-recovered in unit.invoke).
// The errgroup plumbing is kept so such a failure, were one to occur,
// would abort the pool instead of being silently swallowed.
func (p *Pool) runWorker(id int) error {
	defer p.markExited(id)

	n := len(p.queues)
	attempts := 10 * n
	own := p.queues[id]

	for {
		if u, ok := p.stealOnce(id, attempts, n); ok {
			p.inFlight.Add(-1)
			u.invoke()
			continue
		}

		if u, ok := own.pop(); ok {
			p.inFlight.Add(-1)
			u.invoke()
			continue
		}

		// own queue emptied and shutdown was observed.
		if !p.cfg.fastShutdown {
			p.drain(id, n)
		}
		return nil
	}
}

// stealOnce tries a single try-pop rotation across the K=10N peer
// queues starting at id, mirroring the same rotation Submit uses on the
// push side.
func (p *Pool) stealOnce(id, attempts, n int) (unitOfWork, bool) {
	for k := 0; k < attempts; k++ {
		idx := (id + k) % n
		if u, ok := p.queues[idx].tryPop(); ok {
			return u, true
		}
	}
	return nil, false
}

// drain is the post-shutdown phase (strategy A): because a worker
// decrements the in-flight counter after pop but before invocation,
// there is a window where shutdown-and-empty-own-queue still leaves
// stealable work on a peer. drain keeps sweeping every queue until the
// counter reaches zero, yielding the scheduler between sweeps that find
// nothing.
func (p *Pool) drain(id, n int) {
	for p.inFlight.Load() != 0 {
		found := false
		for k := 0; k < n; k++ {
			idx := (id + k) % n
			if u, ok := p.queues[idx].tryPop(); ok {
				p.inFlight.Add(-1)
				u.invoke()
				found = true
			}
		}
		if !found {
			runtime.Gosched()
		}
	}
}
