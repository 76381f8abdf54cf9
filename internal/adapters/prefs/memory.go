package prefs

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// MemoryStore implements domain.PrefStore over an in-process map. Values are
// stored as JSON so corrupt-entry behavior matches the Redis driver.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string, dst any) error {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return domain.ErrPrefNotFound
	}
	return json.Unmarshal(raw, dst)
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = nil
	return nil
}
