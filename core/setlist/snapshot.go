package setlist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jeromej12/mixos/model"
)

const snapshotKey = "mixos:setlist"

// RedisSnapshotter stores the setlist as one JSON blob under a fixed key.
type RedisSnapshotter struct {
	client *redis.Client
}

func NewRedisSnapshotter(client *redis.Client) *RedisSnapshotter {
	return &RedisSnapshotter{client: client}
}

func (r *RedisSnapshotter) Load(ctx context.Context) (*model.Setlist, error) {
	data, err := r.client.Get(ctx, snapshotKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read setlist snapshot: %w", err)
	}

	var s model.Setlist
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to decode setlist snapshot: %w", err)
	}
	return &s, nil
}

func (r *RedisSnapshotter) Save(ctx context.Context, s *model.Setlist) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode setlist snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write setlist snapshot: %w", err)
	}
	return nil
}
