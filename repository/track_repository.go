package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jeromej12/mixos/model"
)

const libraryKey = "mixos:library"

// TrackRepository stores the user's local track library.
type TrackRepository interface {
	Save(ctx context.Context, track *model.Track) error
	GetByID(ctx context.Context, id string) (*model.Track, error)
	GetAll(ctx context.Context) ([]model.Track, error)
	Delete(ctx context.Context, id string) error
}

type redisTrackRepository struct {
	client *redis.Client
}

// NewRedisTrackRepository builds a repository backed by a Redis hash,
// one field per track keyed by track ID.
func NewRedisTrackRepository(client *redis.Client) TrackRepository {
	return &redisTrackRepository{client: client}
}

func (r *redisTrackRepository) Save(ctx context.Context, track *model.Track) error {
	data, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to marshal track %s: %w", track.ID, err)
	}
	if err := r.client.HSet(ctx, libraryKey, track.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save track %s: %w", track.ID, err)
	}
	return nil
}

func (r *redisTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	data, err := r.client.HGet(ctx, libraryKey, id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	var track model.Track
	if err := json.Unmarshal([]byte(data), &track); err != nil {
		return nil, fmt.Errorf("failed to unmarshal track %s: %w", id, err)
	}
	return &track, nil
}

func (r *redisTrackRepository) GetAll(ctx context.Context) ([]model.Track, error) {
	entries, err := r.client.HGetAll(ctx, libraryKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}

	tracks := make([]model.Track, 0, len(entries))
	for id, data := range entries {
		var track model.Track
		if err := json.Unmarshal([]byte(data), &track); err != nil {
			return nil, fmt.Errorf("failed to unmarshal track %s: %w", id, err)
		}
		tracks = append(tracks, track)
	}

	sort.Slice(tracks, func(i, j int) bool {
		return strings.ToLower(tracks[i].Title) < strings.ToLower(tracks[j].Title)
	})
	return tracks, nil
}

func (r *redisTrackRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.HDel(ctx, libraryKey, id).Err(); err != nil {
		return fmt.Errorf("failed to delete track %s: %w", id, err)
	}
	return nil
}
