package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/settings"
)

// rdb is the shared client. It stays nil when Redis is not configured; the
// accessors in this package treat that as a cache miss so the service keeps
// working without the cache.
var rdb *redis.Client

// ErrNotAvailable is returned by accessors when no Redis client is
// configured.
var ErrNotAvailable = errors.New("redis not available")

// Init opens the Redis connection pool and verifies it with a bounded ping.
func Init(cfg *settings.RedisConfig) error {
	if cfg == nil {
		return fmt.Errorf("redis config is nil")
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect to redis failed: %w", err)
	}

	zap.L().Info("init redis success",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)
	return nil
}

// Close releases the connection pool.
func Close() {
	if rdb != nil {
		_ = rdb.Close()
	}
}
