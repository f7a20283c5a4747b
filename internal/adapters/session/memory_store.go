package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	domain "jobapply/internal/domain/jobform"
)

// DefaultTTL is how long an idle draft is kept.
const DefaultTTL = 2 * time.Hour

type entry struct {
	mu       sync.Mutex
	draft    *domain.Draft
	lastSeen time.Time
}

// MemoryStore is an in-memory Store. Drafts are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// Compile-time check that *MemoryStore satisfies Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store that expires drafts idle for longer than ttl.
// PRE: none; ttl <= 0 selects DefaultTTL
// POST: returns a ready-to-use store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create stores d under a new random token.
// PRE: d is non-nil
// POST: token is returned; With(token) reaches d until it expires
func (s *MemoryStore) Create(_ context.Context, d *domain.Draft) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = &entry{draft: d, lastSeen: s.now()}
	return token, nil
}

// With runs fn on the draft stored under token while holding that draft's lock.
// PRE: token is non-empty
// POST: returns ErrNotFound for unknown or expired tokens, otherwise fn's error
func (s *MemoryStore) With(ctx context.Context, token string, fn func(*domain.Draft) error) error {
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s.now().Sub(e.lastSeen) > s.ttl {
		s.Delete(ctx, token)
		return ErrNotFound
	}
	e.lastSeen = s.now()
	return fn(e.draft)
}

// Delete removes the draft stored under token.
// PRE: none
// POST: With(token) returns ErrNotFound
func (s *MemoryStore) Delete(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

// Len returns the number of stored drafts, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes every draft idle for longer than the TTL.
// PRE: none
// POST: returns the number of drafts removed
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, e := range s.entries {
		if !e.mu.TryLock() {
			continue // in use, so not idle
		}
		idle := now.Sub(e.lastSeen) > s.ttl
		e.mu.Unlock()
		if idle {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired drafts every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("application_sessions_expired", "count", n)
			}
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
