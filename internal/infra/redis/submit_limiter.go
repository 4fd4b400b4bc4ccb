package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmitLimiter allows one submission per user per cooldown, shared by every
// instance pointed at the same Redis.
type SubmitLimiter struct {
	client   *redis.Client
	cooldown time.Duration
}

func NewSubmitLimiter(client *redis.Client, cooldown time.Duration) *SubmitLimiter {
	return &SubmitLimiter{client: client, cooldown: cooldown}
}

func (l *SubmitLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	if l.cooldown <= 0 {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, l.key(userID), "locked", l.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("check submit rate limit: %w", err)
	}
	return ok, nil
}

func (l *SubmitLimiter) Release(ctx context.Context, userID int64) error {
	if err := l.client.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("release submit rate limit: %w", err)
	}
	return nil
}

func (l *SubmitLimiter) key(userID int64) string {
	return fmt.Sprintf("rate_limit:user:%d:submit", userID)
}
