package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/config"
)

// Redis holds the client backing the intake session store. The relay
// stays up without it: sessions fail open to the relaying state and
// users re-run /start, so connectivity problems are degraded mode, not
// a startup failure.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects the session backend.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; intake sessions will not persist",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("session store connected", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies session store connectivity for the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("session store not configured")
	}
	return r.Client.Ping(ctx).Err()
}
