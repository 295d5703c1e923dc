package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tasktrack:login:"

// attemptScript increments the counter, starting the window on the first
// hit. Over the limit the increment is undone and the remaining TTL (ms) is
// returned as {0, pttl}; otherwise {1, 0}.
var attemptScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if n > tonumber(ARGV[2]) then
	redis.call("DECR", KEYS[1])
	return {0, redis.call("PTTL", KEYS[1])}
end
return {1, 0}
`)

var releaseScript = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]) or "0")
if n > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

// Redis shares counters between instances. Windows are fixed: the TTL is set
// on the first attempt and not extended by later ones.
type Redis struct {
	client      redis.UniversalClient
	maxAttempts int
	period      time.Duration
}

func NewRedis(client redis.UniversalClient, maxAttempts int, period time.Duration) *Redis {
	return &Redis{client: client, maxAttempts: maxAttempts, period: period}
}

// NewRedisFromURL parses a redis:// URL and returns a limiter on a new client.
func NewRedisFromURL(url string, maxAttempts int, period time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts), maxAttempts, period), nil
}

func (r *Redis) Attempt(ctx context.Context, key string) (time.Duration, error) {
	res, err := attemptScript.Run(ctx, r.client, []string{keyPrefix + key},
		r.period.Milliseconds(), r.maxAttempts).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("%w: unexpected reply %v", ErrUnavailable, res)
	}
	if res[0] == 1 {
		return 0, nil
	}
	if res[1] <= 0 {
		return r.period, nil
	}
	return time.Duration(res[1]) * time.Millisecond, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, r.client, []string{keyPrefix + key}).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
