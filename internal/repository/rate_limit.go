package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"sales_crm/pkg/logger"
)

type RateLimitRepository interface {
	// Hit инкрементирует счетчик и сообщает, уложился ли запрос в лимит окна
	Hit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err)
		return false, 0, err
	}

	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= int64(limit), remaining, nil
}
