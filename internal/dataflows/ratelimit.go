package dataflows

import (
	"sync"
	"time"
)

// RateLimitState records the most recently observed vendor rate-limit
// metadata. It is advisory only: last write wins and nothing reads it for
// control-flow decisions.
type RateLimitState struct {
	mu         sync.Mutex
	remaining  int
	resetAt    time.Time
	observedAt time.Time
}

var rateLimits = &RateLimitState{remaining: -1}

// RateLimits returns the process-wide rate-limit diagnostic state.
func RateLimits() *RateLimitState {
	return rateLimits
}

// Record stores the latest rate-limit observation.
func (s *RateLimitState) Record(remaining int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.resetAt = resetAt
	s.observedAt = time.Now()
}

// Snapshot returns the latest observation. Remaining is -1 when the vendor
// never reported a quota.
func (s *RateLimitState) Snapshot() (remaining int, resetAt, observedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining, s.resetAt, s.observedAt
}
