package services

import (
	"sync"
	"time"
)

// LoginAttemptStore counts failed login attempts per identifier over a
// sliding window. The in-memory implementation below is best-effort and
// process-local: it resets on restart and does not coordinate across server
// instances. A shared-cache implementation can be swapped in behind this
// interface without touching callers.
type LoginAttemptStore interface {
	RecentFailures(key string, now time.Time, window time.Duration) int
	AddFailure(key string, now time.Time, window time.Duration)
	Reset(key string)
}

type MemoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{
		attempts: make(map[string][]time.Time),
	}
}

func (store *MemoryAttemptStore) RecentFailures(key string, now time.Time, window time.Duration) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.pruneLocked(key, now, window))
}

func (store *MemoryAttemptStore) AddFailure(key string, now time.Time, window time.Duration) {
	store.mu.Lock()
	defer store.mu.Unlock()

	pruned := store.pruneLocked(key, now, window)
	pruned = append(pruned, now)
	store.attempts[key] = pruned
}

func (store *MemoryAttemptStore) Reset(key string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.attempts, key)
}

func (store *MemoryAttemptStore) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	values := store.attempts[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(store.attempts, key)
		return []time.Time{}
	}

	store.attempts[key] = pruned
	return pruned
}

// LoginThrottle caps failed logins per normalized email. Once the cap is
// reached inside the window the attempt is rejected before any password
// hashing happens.
type LoginThrottle struct {
	store  LoginAttemptStore
	limit  int
	window time.Duration
}

func NewLoginThrottle(store LoginAttemptStore, limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{store: store, limit: limit, window: window}
}

func (throttle *LoginThrottle) Blocked(key string, now time.Time) bool {
	return throttle.store.RecentFailures(key, now, throttle.window) >= throttle.limit
}

// AttemptsLeft reports how many failures remain before the cap. The login
// response surfaces this to the user on purpose; see the design notes.
func (throttle *LoginThrottle) AttemptsLeft(key string, now time.Time) int {
	left := throttle.limit - throttle.store.RecentFailures(key, now, throttle.window)
	if left < 0 {
		return 0
	}
	return left
}

func (throttle *LoginThrottle) RecordFailure(key string, now time.Time) {
	throttle.store.AddFailure(key, now, throttle.window)
}

func (throttle *LoginThrottle) Reset(key string) {
	throttle.store.Reset(key)
}
