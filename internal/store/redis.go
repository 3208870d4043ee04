package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

func rollKey(date, day, period string) string {
	return fmt.Sprintf("roll:%s:%s:%s", date, day, period)
}

// IncrRollCount bumps the per-(date, day, period) roll counter the worker
// maintains. Keys expire after a week; the ledger is the durable record.
func (r *Redis) IncrRollCount(ctx context.Context, date, day, period string) error {
	key := rollKey(date, day, period)
	if err := r.Client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return r.Client.Expire(ctx, key, 7*24*time.Hour).Err()
}

// RollCount reads a roll counter. Missing keys count as zero.
func (r *Redis) RollCount(ctx context.Context, date, day, period string) (int64, error) {
	n, err := r.Client.Get(ctx, rollKey(date, day, period)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
