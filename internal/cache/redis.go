package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ErrInvalidLimit = errors.New("rate limit capacity and interval must be positive")

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(url string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	redisCache := &RedisCache{Client: client}

	return redisCache, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

// RedisLimiter is a token bucket shared by every instance using the same redis.
type RedisLimiter struct {
	cache    *RedisCache
	capacity int
	interval time.Duration
	now      func() time.Time
}

func NewRedisLimiter(cache *RedisCache, capacity int, interval time.Duration) (*RedisLimiter, error) {
	if capacity <= 0 || interval <= 0 {
		return nil, ErrInvalidLimit
	}
	return &RedisLimiter{
		cache:    cache,
		capacity: capacity,
		interval: interval,
		now:      time.Now,
	}, nil
}

// Allow takes one token from key's bucket. When the bucket is empty it reports
// how long until the next token.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	// idle buckets are dropped once they would be full again
	ttl := int64(2 * l.interval / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	res, err := tokenBucketScript.Run(ctx, l.cache.Client, []string{key},
		l.now().UnixMilli(), l.capacity, l.interval.Milliseconds(), ttl).Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 3 {
		return false, 0, fmt.Errorf("unexpected token bucket reply %v", res)
	}

	allowed := toInt64(res[0]) == 1
	retry := time.Duration(toInt64(res[2])) * time.Millisecond
	return allowed, retry, nil
}

func (l *RedisLimiter) Capacity() int {
	return l.capacity
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}
