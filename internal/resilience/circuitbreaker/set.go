package circuitbreaker

import (
	"net/url"
	"strings"
	"sync"
)

// Set hands out one breaker per key, built from a shared preset on first
// use. Feed and page downloads key it by host so that a dead site only
// trips its own breaker.
//
// Breaker names are "<preset name>:<key>", which also become the circuit
// label of the breaker metrics.
type Set struct {
	preset Config

	mu    sync.Mutex
	byKey map[string]*CircuitBreaker
}

// NewSet creates an empty set.
//
// Parameters:
//   - preset: settings every breaker in the set is created with; its Name
//     becomes the prefix of each breaker name
//
// Returns:
//   - *Set: safe for concurrent use
func NewSet(preset Config) *Set {
	return &Set{preset: preset, byKey: make(map[string]*CircuitBreaker)}
}

// For returns the breaker for key, creating it if needed.
func (s *Set) For(key string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := s.byKey[key]; ok {
		return cb
	}
	cfg := s.preset
	cfg.Name = s.preset.Name + ":" + key
	cb := New(cfg)
	s.byKey[key] = cb
	return cb
}

// ForURL returns the breaker for the host (with port) of rawURL. URLs
// without a host share the "" key.
func (s *Set) ForURL(rawURL string) *CircuitBreaker {
	return s.For(HostKey(rawURL))
}

// Len returns how many breakers were created.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

// HostKey is the lower-cased host[:port] of rawURL, or "" when it has none.
func HostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
