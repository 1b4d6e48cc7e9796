package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process revocation store. It is the fallback when no
// Redis URL is configured; revocations do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryStore creates an empty in-memory revocation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time)}
}

// Revoke marks the token ID as revoked until now+ttl.
func (s *MemoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether the token ID has been revoked and has not yet
// aged out. Expired entries are pruned lazily.
func (s *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	deadline, ok := s.revoked[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		s.mu.Lock()
		delete(s.revoked, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
