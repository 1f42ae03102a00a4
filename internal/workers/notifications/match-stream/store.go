// internal/workers/notifications/match-stream/store.go
package matchstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastCheckKeyPrefix = "matches:last-check:"

func LastCheckKey(userID string) string {
	return lastCheckKeyPrefix + userID
}

// RedisLastCheckStore keeps each subscriber's last poll time so a reconnect
// picks up where the previous stream stopped.
type RedisLastCheckStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisLastCheckStore(client redis.Cmdable, ttl time.Duration) *RedisLastCheckStore {
	return &RedisLastCheckStore{client: client, ttl: ttl}
}

// LastCheck reports false when nothing is stored for userID.
func (s *RedisLastCheckStore) LastCheck(ctx context.Context, userID string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, LastCheckKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad last-check value %q: %w", val, err)
	}
	return t, true, nil
}

func (s *RedisLastCheckStore) SetLastCheck(ctx context.Context, userID string, at time.Time) error {
	return s.client.Set(ctx, LastCheckKey(userID), at.UTC().Format(time.RFC3339Nano), s.ttl).Err()
}
