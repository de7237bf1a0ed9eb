package pool

import (
	"runtime"
	"time"

	"golang.org/x/time/rate"

	"github.com/arjunv/taskforge/internal/backoff"
)

// config holds the resolved settings for a Pool, built from the defaults
// below plus whatever Options the caller passes to New.
type config struct {
	workerCount int

	rateLimiter *rate.Limiter

	fastShutdown bool

	waitBackoffType  backoff.BackoffType
	waitInitialDelay time.Duration
	waitMaxDelay     time.Duration
}

// Option configures a Pool at construction time.
type Option func(*config)

func defaultConfig() *config {
	return &config{
		workerCount:      runtime.GOMAXPROCS(0),
		waitBackoffType:  backoff.BackoffExponential,
		waitInitialDelay: time.Millisecond,
		waitMaxDelay:     50 * time.Millisecond,
	}
}

// buildConfig applies opts over the defaults and clamps the result to the
// invariants New requires (worker count at least 1).
func buildConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.workerCount < 1 {
		cfg.workerCount = 1
	}
	return cfg
}

// WithWorkerCount sets the number of worker goroutines and per-worker
// queues. Values below 1 are clamped to 1.
func WithWorkerCount(n int) Option {
	return func(c *config) {
		c.workerCount = n
	}
}

// WithSubmitRateLimit throttles Submit with a token-bucket limiter. The
// limit applies only to the submission path; it is never consulted
// around task invocation, so it cannot cause a task to run more than
// once.
func WithSubmitRateLimit(r rate.Limit, burst int) Option {
	return func(c *config) {
		c.rateLimiter = rate.NewLimiter(r, burst)
	}
}

// WithFastShutdown opts into the simpler shutdown strategy: a worker
// exits as soon as its own queue reports empty-and-shutdown, even if
// peers still have queued work. Units left stranded on a peer queue at
// that point surface Abandoned once Close runs, rather than being
// invoked. Use only when the caller guarantees Done is called after
// every submission has already been observed by some worker; otherwise
// prefer the default drain behavior.
//
// It also changes Close's join behavior: Close returns promptly without
// waiting for a worker that is still invoking a task, instead joining it
// in the background. This is what makes "prompt shutdown" meaningful
// even if one of the in-flight tasks never returns.
func WithFastShutdown() Option {
	return func(c *config) {
		c.fastShutdown = true
	}
}

// WithCompletionBackoff overrides the spin-wait growth curve WaitToCompletion
// uses between checks of the in-flight counter. The default is a short
// exponential backoff capped at 50ms.
func WithCompletionBackoff(t backoff.BackoffType, initialDelay, maxDelay time.Duration) Option {
	return func(c *config) {
		c.waitBackoffType = t
		c.waitInitialDelay = initialDelay
		c.waitMaxDelay = maxDelay
	}
}
