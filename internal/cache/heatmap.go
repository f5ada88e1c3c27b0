package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HeatmapCache keeps aggregated day->pages maps in Redis so that
// dashboard reads do not re-scan the whole session history on every
// request. It is a pure read-path optimization: every method on a nil
// receiver or nil client is a no-op, and lookup errors degrade to a
// cache miss. Day keys are stored as "2006-01-02" strings.
type HeatmapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHeatmapCache connects to Redis and verifies the connection.
func NewHeatmapCache(addr, password string, ttl time.Duration) (*HeatmapCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &HeatmapCache{client: rdb, ttl: ttl}, nil
}

func heatmapKey(userID, window string) string {
	return fmt.Sprintf("heatmap:user:%s:window:%s", userID, window)
}

// Get returns the cached heatmap for a user/window, or ok=false on a
// miss or any Redis error.
func (c *HeatmapCache) Get(ctx context.Context, userID, window string) (map[string]int, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, heatmapKey(userID, window)).Bytes()
	if err != nil {
		return nil, false
	}
	var heatmap map[string]int
	if err := json.Unmarshal(raw, &heatmap); err != nil {
		return nil, false
	}
	return heatmap, true
}

// Set stores the heatmap for a user/window with the configured TTL.
func (c *HeatmapCache) Set(ctx context.Context, userID, window string, heatmap map[string]int) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(heatmap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, heatmapKey(userID, window), raw, c.ttl).Err()
}

// Invalidate drops every cached window for a user. Called after each
// successful progress write so reads never serve pre-update aggregates
// for longer than one round trip.
func (c *HeatmapCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	pattern := fmt.Sprintf("heatmap:user:%s:window:*", userID)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

func (c *HeatmapCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
