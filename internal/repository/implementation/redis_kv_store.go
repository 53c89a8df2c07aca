package implementation

import (
	"context"
	"errors"
	"time"

	"chatpulse/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const defaultStoreTimeout = 3 * time.Second

// RedisKVStore keeps history in Redis under a namespaced key.
type RedisKVStore struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

func NewRedisKVStore(rdb *redis.Client, prefix string) contract.KVStore {
	return &RedisKVStore{rdb: rdb, prefix: prefix, timeout: defaultStoreTimeout}
}

func (s *RedisKVStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisKVStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisKVStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisKVStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.rdb.Del(ctx, s.key(key)).Err()
}
