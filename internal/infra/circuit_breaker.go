package infra

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Execute while the breaker is rejecting calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerState is exposed on the health endpoint.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker guards the SMTP relay. After failureLimit consecutive
// failures it rejects every call for the cooldown period, then lets a
// single probe through; the probe's outcome decides whether it closes
// again or re-opens for another cooldown.
type CircuitBreaker struct {
	failureLimit int
	cooldown     time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
}

func NewCircuitBreaker(failureLimit int, cooldown time.Duration) *CircuitBreaker {
	if failureLimit <= 0 {
		failureLimit = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{failureLimit: failureLimit, cooldown: cooldown}
}

// Execute runs fn unless the breaker is open, in which case it fails fast
// with ErrBreakerOpen without invoking fn.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrBreakerOpen
	}
	err := fn()
	b.record(err)
	return err
}

// State reports the breaker's current state for health checks.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *CircuitBreaker) stateLocked() BreakerState {
	if b.failures < b.failureLimit {
		return BreakerClosed
	}
	if time.Since(b.openedAt) < b.cooldown {
		return BreakerOpen
	}
	return BreakerHalfOpen
}

func (b *CircuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.stateLocked() {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		// One probe per cooldown window.
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

func (b *CircuitBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.failureLimit {
		b.openedAt = time.Now()
	}
}
