package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sahelbuild/backend/internal/domain/shared"
)

// sweepEvery bounds how often Reserve walks the map for expired keys.
const sweepEvery = time.Minute

type memoryEntry struct {
	until    time.Time
	response []byte
	done     bool
}

// MemoryStore keeps keys in process. Expired keys are swept on Reserve, so
// no goroutine is needed.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// live returns the entry under key unless it has expired. Callers hold mu.
func (s *MemoryStore) live(key string, now time.Time) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if ok && !now.Before(e.until) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, ok
}

func (s *MemoryStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		for k, e := range s.entries {
			if !now.Before(e.until) {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}
	if _, held := s.live(key, now); held {
		return false, nil
	}
	s.entries[key] = memoryEntry{until: now.Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = memoryEntry{until: s.now().Add(ttl), response: slices.Clone(response), done: true}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key, s.now())
	if !ok || !e.done {
		return nil, false, nil
	}
	return slices.Clone(e.response), true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len counts the keys held, expired ones included until the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ shared.IdempotencyStore = (*MemoryStore)(nil)
