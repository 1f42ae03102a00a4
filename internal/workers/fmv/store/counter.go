// internal/workers/fmv/store/counter.go

// Package store holds the persistence shared by the FMV workers: the daily
// recalculation counter in Redis, the FMV row and score history in Postgres,
// and the public comparables index in Elasticsearch.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterKeyPrefix = "fmv:recalc:"

// reserveScript checks the count against ARGV[1] and takes a slot in one
// step, pinning the key's expiry to the next UTC midnight. It replies
// {allowed, count}.
var reserveScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n >= tonumber(ARGV[1]) then
  return {0, n}
end
n = redis.call('INCR', KEYS[1])
redis.call('EXPIREAT', KEYS[1], ARGV[2])
return {1, n}
`)

// releaseScript undoes one reserve and drops the key once it reaches zero.
var releaseScript = redis.NewScript(`
local n = redis.call('DECR', KEYS[1])
if n <= 0 then
  redis.call('DEL', KEYS[1])
end
return n
`)

// DailyCounter counts FMV recalculations per athlete per UTC day.
type DailyCounter struct {
	client redis.Cmdable
}

func NewDailyCounter(client redis.Cmdable) *DailyCounter {
	return &DailyCounter{client: client}
}

// CounterKey is the Redis key for athleteID on the UTC day containing at.
func CounterKey(athleteID string, at time.Time) string {
	return fmt.Sprintf("%s%s:%s", counterKeyPrefix, athleteID, at.UTC().Format("2006-01-02"))
}

// NextReset is the next UTC midnight after at.
func NextReset(at time.Time) time.Time {
	y, m, d := at.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// Used returns how many recalculations athleteID has made on at's UTC day.
func (c *DailyCounter) Used(ctx context.Context, athleteID string, at time.Time) (int, error) {
	n, err := c.client.Get(ctx, CounterKey(athleteID, at)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Reserve takes one of limit daily slots for athleteID. When the day is
// already full it returns false and the current count without changing it.
func (c *DailyCounter) Reserve(ctx context.Context, athleteID string, at time.Time, limit int) (bool, int, error) {
	res, err := reserveScript.Run(ctx, c.client,
		[]string{CounterKey(athleteID, at)},
		limit, NextReset(at).Unix(),
	).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("reserve: unexpected reply %v", res)
	}
	return res[0] == 1, int(res[1]), nil
}

// Release gives back a slot taken by Reserve.
func (c *DailyCounter) Release(ctx context.Context, athleteID string, at time.Time) error {
	return releaseScript.Run(ctx, c.client, []string{CounterKey(athleteID, at)}).Err()
}
