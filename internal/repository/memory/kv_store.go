package memory

import (
	"chatpulse/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// KVStore is the in-process history backend. Entries never expire.
type KVStore struct {
	cache *cache.Cache
}

func NewKVStore() contract.KVStore {
	return &KVStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *KVStore) Get(key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *KVStore) Set(key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *KVStore) Remove(key string) error {
	s.cache.Delete(key)
	return nil
}
