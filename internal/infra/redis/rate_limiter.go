package redis

import (
	"context"
	"fmt"
	"time"

	"mindmend/internal/domain/ports/repository"
)

var _ repository.RateLimiter = (*RateLimiter)(nil)

type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow increments the window counter for key. The first hit in a window sets the expiry;
// a counter left without one (failed EXPIRE) is repaired on the next call.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	} else if ttl, err := r.client.TTL(ctx, key); err == nil && ttl < 0 {
		_ = r.client.Expire(ctx, key, window)
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// ClientCommandKey names the counter for one client and operation, e.g. rate_limit:10.0.0.1:respond.
func ClientCommandKey(client, command string) string {
	return fmt.Sprintf("rate_limit:%s:%s", client, command)
}

func ChatCommandKey(chatID int64, command string) string {
	return fmt.Sprintf("rate_limit:tg%d:%s", chatID, command)
}
