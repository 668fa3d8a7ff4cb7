// Package guard protects calls to downstream systems.
package guard

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "closed"
}

// CircuitBreaker stops calls to a failing dependency for resetTimeout after
// failThreshold consecutive failures, then lets a single probe through.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         CircuitState
	failures      int
	probing       bool
	openedAt      time.Time
	failThreshold int
	resetTimeout  time.Duration
	now           func() time.Time
}

// NewCircuitBreaker creates a circuit breaker with configurable thresholds.
func NewCircuitBreaker(failThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failThreshold < 1 {
		failThreshold = 1
	}
	return &CircuitBreaker{
		failThreshold: failThreshold,
		resetTimeout:  resetTimeout,
		now:           time.Now,
	}
}

// Allow returns nil when a call may proceed, or an error naming how long the
// circuit stays open.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		elapsed := cb.now().Sub(cb.openedAt)
		if elapsed < cb.resetTimeout {
			return fmt.Errorf("circuit open, resets in %s", cb.resetTimeout-elapsed)
		}
		cb.state = CircuitHalfOpen
		cb.probing = true
		return nil
	case CircuitHalfOpen:
		if cb.probing {
			return fmt.Errorf("circuit half-open, probe in flight")
		}
		cb.probing = true
		return nil
	}
	return nil
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failures = 0
	cb.probing = false
}

// RecordFailure counts a failure. A failed probe reopens the circuit at once.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.probing = false
	if cb.state == CircuitHalfOpen || cb.failures >= cb.failThreshold {
		cb.state = CircuitOpen
		cb.openedAt = cb.now()
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
