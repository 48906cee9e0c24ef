package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Sessions stores values under random ids. Entries expire after ttl without
// use and the least recently used entry is evicted beyond max entries.
type Sessions[V any] struct {
	lru    *expirable.LRU[string, V]
	onSize func(int)
}

// SessionsOption configures a session store.
type SessionsOption func(*sessionsConfig)

type sessionsConfig struct {
	onSize func(int)
}

// WithSizeObserver calls f with the number of entries after every change.
func WithSizeObserver(f func(int)) SessionsOption {
	return func(c *sessionsConfig) {
		c.onSize = f
	}
}

// NewSessions creates a session store.
func NewSessions[V any](max int, ttl time.Duration, opts ...SessionsOption) *Sessions[V] {
	cfg := sessionsConfig{onSize: func(int) {}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if max <= 0 {
		max = 1
	}
	return &Sessions[V]{
		lru:    expirable.NewLRU[string, V](max, nil, ttl),
		onSize: cfg.onSize,
	}
}

// Add stores v under a new id and returns the id.
func (s *Sessions[V]) Add(v V) string {
	id := uuid.NewString()
	s.lru.Add(id, v)
	s.onSize(s.lru.Len())
	return id
}

// Get returns the value stored under id and renews its expiry.
func (s *Sessions[V]) Get(id string) (V, bool) {
	if _, err := uuid.Parse(id); err != nil {
		var zero V
		return zero, false
	}
	v, ok := s.lru.Get(id)
	if ok {
		s.lru.Add(id, v)
	}
	s.onSize(s.lru.Len())
	return v, ok
}

// Remove deletes id. It reports whether it was present.
func (s *Sessions[V]) Remove(id string) bool {
	ok := s.lru.Remove(id)
	s.onSize(s.lru.Len())
	return ok
}

// Len returns the number of live entries.
func (s *Sessions[V]) Len() int {
	return s.lru.Len()
}
