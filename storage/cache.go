package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

const rowCacheKeyPrefix = "leads:rows:"

// RowCache keeps the raw rows of each tab in Redis for a short TTL so that
// dashboard refreshes do not hit the Sheets quota.
type RowCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRowCache connects to the Redis instance at redisURL.
func NewRowCache(ctx context.Context, redisURL string, ttl time.Duration) (*RowCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return &RowCache{client: client, ttl: ttl}, nil
}

// Get returns the cached rows of a tab. ok is false on a miss.
func (c *RowCache) Get(ctx context.Context, spreadsheetID string, source models.Source) ([]models.RawRow, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(spreadsheetID, source)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", source, err)
	}

	var rows []models.RawRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", source, err)
	}
	return rows, true, nil
}

// Set stores the rows of a tab for the cache TTL.
func (c *RowCache) Set(ctx context.Context, spreadsheetID string, source models.Source, rows []models.RawRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", source, err)
	}
	if err := c.client.Set(ctx, cacheKey(spreadsheetID, source), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", source, err)
	}
	return nil
}

// Invalidate drops every cached tab of a spreadsheet.
func (c *RowCache) Invalidate(ctx context.Context, spreadsheetID string) error {
	keys := make([]string, 0, len(models.Sources))
	for _, s := range models.Sources {
		keys = append(keys, cacheKey(spreadsheetID, s))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

func (c *RowCache) Close() error {
	return c.client.Close()
}

func cacheKey(spreadsheetID string, source models.Source) string {
	return rowCacheKeyPrefix + spreadsheetID + ":" + string(source)
}
