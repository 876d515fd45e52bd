package gateway

import (
	"math"
	"sync"
	"time"
)

// DefaultSweepThreshold is the key count above which expired windows are swept.
const DefaultSweepThreshold = 500

// window is one client's fixed rate-limit window.
type window struct {
	count   int
	resetAt time.Time
}

// Decision is the outcome of a rate check.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below 1 for a rejection.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	return max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
}

// Limiter is a per-client fixed-window counter. The whole check-and-increment runs
// under one mutex, so concurrent requests cannot overshoot the maximum.
type Limiter struct {
	mu             sync.Mutex
	windows        map[string]*window
	max            int
	interval       time.Duration
	sweepThreshold int
	now            func() time.Time
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) { l.now = now }
}

// WithSweepThreshold overrides the key count that triggers a sweep.
func WithSweepThreshold(n int) LimiterOption {
	return func(l *Limiter) {
		if n > 0 {
			l.sweepThreshold = n
		}
	}
}

// NewLimiter allows max requests per interval for each client.
func NewLimiter(max int, interval time.Duration, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		windows:        make(map[string]*window),
		max:            max,
		interval:       interval,
		sweepThreshold: DefaultSweepThreshold,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndConsume records one request for clientID if its budget allows it.
func (l *Limiter) CheckAndConsume(clientID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) > l.sweepThreshold {
		l.sweep(now)
	}

	w, ok := l.windows[clientID]
	if !ok || !now.Before(w.resetAt) {
		// absent or stale: replace, never increment
		w = &window{count: 1, resetAt: now.Add(l.interval)}
		l.windows[clientID] = w
		return Decision{Allowed: true, Remaining: l.max - 1, ResetAt: w.resetAt}
	}

	if w.count >= l.max {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    w.resetAt,
			RetryAfter: w.resetAt.Sub(now),
		}
	}

	w.count++
	return Decision{Allowed: true, Remaining: l.max - w.count, ResetAt: w.resetAt}
}

// sweep deletes every expired window. Live windows are never evicted. Caller holds mu.
func (l *Limiter) sweep(now time.Time) int {
	removed := 0
	for id, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
