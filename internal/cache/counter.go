package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"
)

const counterKeyPrefix = "ratelimit:"

// WindowCounter counts hits per key in fixed, clock-aligned windows shared by
// every API instance.
type WindowCounter struct {
	client *redis.Client
	now    func() time.Time
}

// NewWindowCounter returns a WindowCounter on client.
func NewWindowCounter(client *redis.Client) *WindowCounter {
	return &WindowCounter{client: client, now: time.Now}
}

// Incr records a hit for key in the current window and returns the hit count
// so far together with the time the window closes.
func (c *WindowCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	start := c.now().Truncate(window)
	resetAt := start.Add(window)
	redisKey := counterKeyPrefix + key + ":" + strconv.FormatInt(start.Unix(), 10)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.ExpireAt(ctx, redisKey, resetAt.Add(time.Second))
		return nil
	})
	if err != nil {
		return 0, resetAt, errors.Wrap(err, "increment rate counter")
	}
	return incr.Val(), resetAt, nil
}
