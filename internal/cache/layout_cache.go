package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"busbooking/internal/seatmap"
	"busbooking/internal/utils"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "seat_layout:"

// Source is what the cache decorates.
type Source interface {
	FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error)
}

// LayoutCache is a read-through cache over a layout Source. A nil Redis
// client turns it into a pass-through; Redis errors fall back to the source.
type LayoutCache struct {
	source Source
	client *redis.Client
	ttl    time.Duration
}

func NewLayoutCache(source Source, client *redis.Client, ttl time.Duration) *LayoutCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LayoutCache{source: source, client: client, ttl: ttl}
}

func layoutKey(busID string) string {
	return keyPrefix + strings.ToUpper(strings.TrimSpace(busID))
}

func (c *LayoutCache) FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error) {
	if c.client == nil {
		return c.source.FetchLayout(ctx, busID)
	}
	key := layoutKey(busID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p seatmap.Payload
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			return &p, nil
		}
		utils.LogEvent("", "cache", "decode_failed", fmt.Sprintf("key=%s", key))
	case !errors.Is(err, redis.Nil):
		utils.LogEvent("", "cache", "get_failed", fmt.Sprintf("key=%s err=%v", key, err))
	}

	p, err := c.source.FetchLayout(ctx, busID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			utils.LogEvent("", "cache", "set_failed", fmt.Sprintf("key=%s err=%v", key, err))
		}
	}
	return p, nil
}

// Invalidate drops a cached layout after it changed in storage.
func (c *LayoutCache) Invalidate(ctx context.Context, busID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, layoutKey(busID)).Err(); err != nil {
		utils.LogEvent("", "cache", "invalidate_failed", fmt.Sprintf("bus=%s err=%v", busID, err))
	}
}
