package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryItem struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps encoded values in a map. Expired entries are dropped on
// read and on every Set.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) bool {
	s.mu.Lock()
	item, ok := s.items[key]
	if ok && s.expired(item) {
		delete(s.items, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal(item.data, dest) == nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}

	item := memoryItem{data: data}
	if ttl > 0 {
		item.expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, it := range s.items {
		if s.expired(it) {
			delete(s.items, k)
		}
	}
	s.items[key] = item
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *MemoryStore) expired(it memoryItem) bool {
	return !it.expires.IsZero() && !s.now().Before(it.expires)
}
