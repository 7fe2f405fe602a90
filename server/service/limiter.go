package service

import (
	"context"
	"errors"
	"github.com/redis/go-redis/v9"
	"time"
)

// RedisLimiter keeps one counter per address that expires at the next local
// midnight.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisLimiter) Count(ctx context.Context, address string) (int, error) {
	count, err := r.client.Get(ctx, r.prefix+address).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (r *RedisLimiter) Hit(ctx context.Context, address string) error {
	key := r.prefix + address
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, nextMidnight(r.now()))
		return nil
	})
	return err
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
