package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live match state.
func lockKey(matchID string) string     { return "match:" + matchID + ":lock" }
func snapshotKey(matchID string) string { return "match:" + matchID + ":snapshot" }

// AcquireLock takes the per-match action mutex. Actions on the same match
// must run one at a time; different matches are independent aggregates and
// proceed in parallel. The TTL guards against a crashed holder.
func (c *Client) AcquireLock(ctx context.Context, matchID string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(matchID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire match lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock frees the per-match action mutex.
func (c *Client) ReleaseLock(ctx context.Context, matchID string) error {
	if err := c.rdb.Del(ctx, lockKey(matchID)).Err(); err != nil {
		return fmt.Errorf("release match lock: %w", err)
	}
	return nil
}

// SetSnapshot stores the rendered board snapshot JSON.
func (c *Client) SetSnapshot(ctx context.Context, matchID string, snapshot json.RawMessage) error {
	if err := c.rdb.Set(ctx, snapshotKey(matchID), []byte(snapshot), 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the board snapshot JSON, or nil if not cached.
func (c *Client) GetSnapshot(ctx context.Context, matchID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteSnapshot removes the cached snapshot (on match deletion or completion).
func (c *Client) DeleteSnapshot(ctx context.Context, matchID string) error {
	if err := c.rdb.Del(ctx, snapshotKey(matchID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
