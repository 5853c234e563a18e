package properties

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal property entry failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
	return nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}
