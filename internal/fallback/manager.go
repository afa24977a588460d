package fallback

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"timecoin/core/events"
)

// Escalator drives a monotonic strategy progression for a single subject. It
// is generic over the strategy type so the same timer/escalation machinery
// serves both BlockStrategy and TxStrategy (spec §9's tagged-enum modeling
// carried through to the manager itself, rather than duplicating the timer
// logic per strategy type).
type Escalator[S fmt.Stringer] struct {
	mu       sync.Mutex
	subject  string
	current  S
	next     func(S) (S, bool)
	deadline time.Time
	emitter  events.Emitter
}

// NewEscalator starts an escalator for subject at the given initial
// strategy, using next to compute successors.
func NewEscalator[S fmt.Stringer](subject string, initial S, next func(S) (S, bool), emitter events.Emitter) *Escalator[S] {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Escalator[S]{subject: subject, current: initial, next: next, emitter: emitter}
}

// Current returns the currently active strategy.
func (e *Escalator[S]) Current() S {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Arm records the deadline at which the current strategy's timeout expires.
// The caller (the consensus round driver) is responsible for actually
// sleeping or registering a timer against this deadline; Escalator only
// tracks state, matching the cooperative-suspension-point concurrency model
// used for block cycle and vote-GC tasks.
func (e *Escalator[S]) Arm(timeout time.Duration, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deadline = now.Add(timeout)
}

// Expired reports whether the current strategy's armed timeout has elapsed.
func (e *Escalator[S]) Expired(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.deadline.IsZero() && !now.Before(e.deadline)
}

// Escalate advances to the next strategy in the progression. It is a no-op
// returning (current, false) if already terminal.
func (e *Escalator[S]) Escalate() (S, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.next(e.current)
	if !ok {
		return e.current, false
	}
	from := e.current
	e.current = n
	e.emitter.Emit(events.StrategyEscalated{
		Subject: e.subject,
		From:    from.String(),
		To:      n.String(),
	})
	return n, true
}

// RetryLimiter paces rebroadcast attempts during tx fallback with
// exponential back-off, bounded by MaxRetries (spec §4.4: "rebroadcasts up
// to MAX_RETRIES times with exponential back-off"). Built on
// golang.org/x/time/rate the way the gateway's request-rate limiter is, but
// driven manually (one token consumed per retry attempt) rather than gating
// inbound HTTP traffic.
type RetryLimiter struct {
	mu         sync.Mutex
	attempts   int
	maxRetries int
	base       time.Duration
	limiter    *rate.Limiter
}

// NewRetryLimiter builds a limiter permitting up to maxRetries attempts,
// each attempt's minimum spacing doubling from base.
func NewRetryLimiter(maxRetries int, base time.Duration) *RetryLimiter {
	return &RetryLimiter{
		maxRetries: maxRetries,
		base:       base,
		limiter:    rate.NewLimiter(rate.Every(base), 1),
	}
}

// NextBackoff returns the delay before the next retry attempt should fire,
// and whether a retry is still permitted at all (false once MaxRetries is
// exhausted).
func (r *RetryLimiter) NextBackoff() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempts >= r.maxRetries {
		return 0, false
	}
	delay := r.base << uint(r.attempts)
	r.attempts++
	r.limiter.SetLimit(rate.Every(delay))
	return delay, true
}

// Attempts returns how many retries have been consumed so far.
func (r *RetryLimiter) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}
