package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in a process-local map. Used as the test double
// and as a throwaway backend for local experiments.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.slots[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.slots[key] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
