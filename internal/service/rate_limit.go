package service

import (
	"context"
	"time"

	"sales_crm/internal/repository"
	"sales_crm/pkg/logger"
)

type RateLimitService interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	return s.rateLimitRepo.Hit(ctx, key, limit, window)
}
