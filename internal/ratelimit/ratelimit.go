package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the allowance per identifier per window.
	DefaultMaxRequests = 10
	// DefaultWindow is the fixed window length.
	DefaultWindow = time.Minute
)

// Result reports the outcome of a rate-limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter gates requests per identifier and logical endpoint.
type Limiter interface {
	Check(endpoint, identifier string) Result
	Reset(endpoint, identifier string)
}

type window struct {
	count     int
	resetTime time.Time
}

// MemoryLimiter is an in-process fixed-window Limiter. Like the geo cache it
// assumes a single process; a multi-process deployment needs a shared store.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	max     int
	length  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter with the default allowance and window.
func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithOptions(DefaultMaxRequests, DefaultWindow, time.Now)
}

// NewMemoryLimiterWithOptions allows tests to control limits and time.
func NewMemoryLimiterWithOptions(max int, length time.Duration, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]window),
		max:     max,
		length:  length,
		now:     now,
	}
}

// Check counts a request against the identifier's current window and reports
// whether it is allowed. An expired window is replaced by a fresh one.
func (l *MemoryLimiter) Check(endpoint, identifier string) Result {
	key := windowKey(endpoint, identifier)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetTime) {
		w = window{count: 0, resetTime: now.Add(l.length)}
	}

	if w.count >= l.max {
		return Result{
			Allowed:    false,
			Limit:      l.max,
			Remaining:  0,
			ResetTime:  w.resetTime,
			RetryAfter: w.resetTime.Sub(now),
		}
	}

	w.count++
	l.windows[key] = w

	return Result{
		Allowed:   true,
		Limit:     l.max,
		Remaining: l.max - w.count,
		ResetTime: w.resetTime,
	}
}

// Reset drops the identifier's window for the endpoint.
func (l *MemoryLimiter) Reset(endpoint, identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, windowKey(endpoint, identifier))
}

func windowKey(endpoint, identifier string) string {
	return fmt.Sprintf("%s:%s", endpoint, identifier)
}
