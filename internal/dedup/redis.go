package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "radar:seen:"

// RedisStore records seen article UIDs in Redis with a TTL, so restarts do
// not replay old news and old keys age out on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping verifies the connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Seen uses SET NX so the check-and-record is a single round trip: the key
// was set means we had not seen it.
func (s *RedisStore) Seen(ctx context.Context, uid string) (bool, error) {
	set, err := s.client.SetNX(ctx, keyPrefix+uid, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	return !set, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
