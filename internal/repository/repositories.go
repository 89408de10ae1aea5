package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"sales_crm/pkg/logger"
)

type Repositories struct {
	Employee  EmployeeRepository
	Channel   ChannelRepository
	Message   MessageRepository
	Mention   MentionRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Employee:  NewEmployeeRepository(db, log),
		Channel:   NewChannelRepository(db, log),
		Message:   NewMessageRepository(db, log),
		Mention:   NewMentionRepository(db, log),
		RateLimit: NewRateLimitRepository(redis, log),
	}
}

// clampLimit ограничивает limit диапазоном [1, 100]; def при нулевом значении
func clampLimit(limit, def int) int {
	if limit == 0 {
		limit = def
	}
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}
