package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bangcorrupt/freesound/pkg/similarity"
)

// GetSimilarSounds returns the cached similarity result for a sound and
// preset. A missing key and an unconfigured client both come back as
// (nil, nil): the caller falls through to the similarity service.
func GetSimilarSounds(ctx context.Context, soundID int64, preset string) ([]similarity.Sound, error) {
	if rdb == nil {
		return nil, nil
	}

	raw, err := rdb.Get(ctx, getSimilarityKey(soundID, preset)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	sounds := make([]similarity.Sound, 0)
	if err := json.Unmarshal(raw, &sounds); err != nil {
		return nil, err
	}
	return sounds, nil
}

// SetSimilarSounds caches a similarity result with the configured TTL.
func SetSimilarSounds(ctx context.Context, soundID int64, preset string, sounds []similarity.Sound, ttl time.Duration) error {
	if rdb == nil {
		return ErrNotAvailable
	}

	raw, err := json.Marshal(sounds)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, getSimilarityKey(soundID, preset), raw, ttl).Err()
}
