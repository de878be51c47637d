package logic

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bangcorrupt/freesound/dao/redis"
	"github.com/bangcorrupt/freesound/pkg/errorx"
	"github.com/bangcorrupt/freesound/pkg/similarity"
	"github.com/bangcorrupt/freesound/settings"
)

// simClient talks to the out-of-process similarity service. Tests swap it
// through SetSimilarityClient.
var simClient *similarity.Client

// InitSimilarity builds the shared similarity client from configuration.
func InitSimilarity(cfg *settings.SimilarityConfig) {
	simClient = similarity.NewClient(cfg)
}

// SetSimilarityClient injects a client, used by tests.
func SetSimilarityClient(c *similarity.Client) {
	simClient = c
}

// validPreset reports whether the preset is one of the configured descriptor
// presets.
func validPreset(cfg *settings.SimilarityConfig, preset string) bool {
	for _, p := range cfg.Presets {
		if p == preset {
			return true
		}
	}
	return false
}

// GetSimilarSounds returns up to num sounds similar to soundID under the
// given preset. The full cacheable prefix of the result is fetched from the
// similarity service once and kept in Redis for the configured TTL;
// subsequent requests are served from the cache. Redis outages degrade to
// pass-through.
func GetSimilarSounds(ctx context.Context, soundID int64, preset string, num int) ([]similarity.Sound, error) {
	cfg := settings.Conf.Similarity

	if preset == "" {
		preset = cfg.DefaultPreset
	}
	if !validPreset(cfg, preset) {
		return nil, errorx.ErrInvalidPreset
	}
	if num <= 0 {
		num = cfg.DefaultResults
	}
	if num > cfg.CacheSize {
		num = cfg.CacheSize
	}

	sounds, err := redis.GetSimilarSounds(ctx, soundID, preset)
	if err != nil {
		zap.L().Warn("similarity cache read failed",
			zap.Int64("sound_id", soundID),
			zap.String("preset", preset),
			zap.Error(err))
	}

	if sounds == nil {
		sounds, err = simClient.Search(ctx, soundID, preset, cfg.CacheSize)
		if err != nil {
			zap.L().Error("similarity search failed",
				zap.Int64("sound_id", soundID),
				zap.String("preset", preset),
				zap.Error(err))
			return nil, errorx.ErrServerBusy
		}

		err = redis.SetSimilarSounds(ctx, soundID, preset, sounds, cfg.CacheTime)
		if err != nil {
			zap.L().Warn("similarity cache write failed",
				zap.Int64("sound_id", soundID),
				zap.String("preset", preset),
				zap.Error(err))
		}
	}

	if len(sounds) > num {
		sounds = sounds[:num]
	}
	return sounds, nil
}

// WarmSimilarityCache fetches and caches the similarity results of a sound
// for every configured preset concurrently. Used after (re)analysis of a
// sound.
func WarmSimilarityCache(ctx context.Context, soundID int64) error {
	cfg := settings.Conf.Similarity

	g, gctx := errgroup.WithContext(ctx)
	for _, preset := range cfg.Presets {
		preset := preset
		g.Go(func() error {
			sounds, err := simClient.Search(gctx, soundID, preset, cfg.CacheSize)
			if err != nil {
				return err
			}
			err = redis.SetSimilarSounds(gctx, soundID, preset, sounds, cfg.CacheTime)
			if err != nil {
				zap.L().Warn("similarity cache write failed",
					zap.Int64("sound_id", soundID),
					zap.String("preset", preset),
					zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}
