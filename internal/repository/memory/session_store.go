package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gabaylakad/backend/internal/repository"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// SessionStore is an in-process repository.SessionStore. It serves
// single-instance development runs without redis, and tests. Expired
// entries are dropped lazily on Get.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewSessionStoreWithClock lets tests control expiry.
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	return &SessionStore{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (s *SessionStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", repository.ErrKeyNotFound
	}
	return e.value, nil
}
