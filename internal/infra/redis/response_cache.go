package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindmend/internal/domain"
	"mindmend/internal/domain/model"
	"mindmend/internal/domain/ports/repository"
	"mindmend/internal/infra/metrics"
)

const responseKeyPrefix = "mindmend:response:"

var _ repository.ResponseCache = (*ResponseCache)(nil)

// ResponseCache keeps composed responses as JSON, keyed by a digest of the message
// so user text never appears in key names.
type ResponseCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewResponseCache(client RedisClient, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		client: client,
		ttl:    ttl,
	}
}

func ResponseKey(message string) string {
	sum := sha256.Sum256([]byte(message))
	return responseKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *ResponseCache) Get(ctx context.Context, message string) (*model.TherapistResponse, error) {
	data, err := c.client.Get(ctx, ResponseKey(message))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			metrics.IncCacheRequest("response", metrics.CacheMiss)
			return nil, domain.ErrCacheMiss
		}
		metrics.IncCacheRequest("response", metrics.CacheError)
		return nil, fmt.Errorf("get cached response: %w", err)
	}

	var resp model.TherapistResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		metrics.IncCacheRequest("response", metrics.CacheError)
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	metrics.IncCacheRequest("response", metrics.CacheHit)
	return &resp, nil
}

func (c *ResponseCache) Set(ctx context.Context, message string, resp *model.TherapistResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ResponseKey(message), data, c.ttl)
}
