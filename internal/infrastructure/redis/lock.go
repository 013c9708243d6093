package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore serializes the ledger's check-then-act sequence across
// processes with a plain SetNX lock. The DB unique index stays the
// tie-breaker if two holders ever slip through.
type LockStore struct {
	client *redis.Client
}

func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// Acquire attempts to take the lock for key. Returns true if acquired,
// false if already held.
func (s *LockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, fmt.Sprintf("lock:payment:%s", key), "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Release releases the lock for key.
func (s *LockStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, fmt.Sprintf("lock:payment:%s", key)).Err()
}
