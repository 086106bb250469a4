package kv

import (
	"github.com/patrickmn/go-cache"
)

// MemoryStore lives as long as the process. It backs tab-scoped state such as
// the current conversation.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore returns an empty store whose entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	raw, found := s.cache.Get(key)
	if !found {
		return "", false, nil
	}
	value, _ := raw.(string)
	return value, true, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.cache.Delete(key)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
