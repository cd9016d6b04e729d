package dedup

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and Redis-less setups. It
// never expires entries, so it is only suitable for short-lived runs.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Seen(_ context.Context, uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[uid]; ok {
		return true, nil
	}
	s.seen[uid] = struct{}{}
	return false, nil
}
