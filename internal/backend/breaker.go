package backend

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Allow while the breaker is rejecting calls.
var ErrBreakerOpen = errors.New("backend: circuit breaker is open")

// breakerState is the current state of the circuit breaker.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker guards the backend with the classic three-state circuit breaker:
// consecutive failures trip Closed to Open, Open cools down into HalfOpen,
// and consecutive HalfOpen successes close it again. Safe for concurrent use.
type Breaker struct {
	mu        sync.Mutex
	state     breakerState
	failures  int
	successes int
	openedAt  time.Time

	failureThreshold int
	successThreshold int
	cooldown         time.Duration
}

// NewBreaker creates a circuit breaker. Non-positive arguments fall back to
// 5 consecutive failures, 2 recovery successes, and a 30 second cooldown.
func NewBreaker(failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 5
	}
	if successThreshold < 1 {
		successThreshold = 2
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
	}
}

// Allow reports whether a call may proceed. While Open, it returns
// ErrBreakerOpen until the cooldown elapses, then lets a probe through.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateOpen {
		if time.Since(b.openedAt) <= b.cooldown {
			return ErrBreakerOpen
		}
		b.state = stateHalfOpen
		b.successes = 0
	}
	return nil
}

// RecordSuccess notes a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		b.failures = 0
	case stateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = stateClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

// RecordFailure notes a failed call. A HalfOpen failure reopens immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = stateOpen
			b.openedAt = time.Now()
		}
	case stateHalfOpen:
		b.state = stateOpen
		b.openedAt = time.Now()
		b.successes = 0
	}
}

// State returns the breaker state as a string, for logs and metrics.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateOpen && time.Since(b.openedAt) > b.cooldown {
		b.state = stateHalfOpen
		b.successes = 0
	}
	return b.state.String()
}
