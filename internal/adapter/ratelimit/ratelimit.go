// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key in fixed windows.
type Limiter struct {
	r      *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// New returns a Limiter allowing limit hits per window for each key.
func New(r *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{r: r, limit: limit, window: window, prefix: "rl:"}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	pipe := l.r.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}
