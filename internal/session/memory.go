// Package session provides the session stores backing browser logins.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/claimguard/internal/common"
)

// entry is a single authenticated session.
type entry struct {
	createdAt time.Time
	username  string
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	now      func() time.Time
	sessions map[string]entry
	maxAge   time.Duration
	mu       sync.RWMutex
}

// NewMemoryStore creates an in-memory store. A zero maxAge keeps sessions until Destroy.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Create issues a new token for username.
func (s *MemoryStore) Create(_ context.Context, username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", common.ErrInvalidSession
	}

	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = entry{username: username, createdAt: s.now()}

	return token, nil
}

// Lookup returns the username for token, if the session exists and has not expired.
func (s *MemoryStore) Lookup(_ context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	if expired(e.createdAt, s.maxAge, s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", false, nil
	}

	return e.username, true, nil
}

// Destroy removes the session. Unknown tokens are ignored.
func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func expired(createdAt time.Time, maxAge time.Duration, now time.Time) bool {
	return maxAge > 0 && now.Sub(createdAt) > maxAge
}
