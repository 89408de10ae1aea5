package service

import (
	"sales_crm/internal/config"
	"sales_crm/internal/repository"
	"sales_crm/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Employee  EmployeeService
	Discuss   DiscussService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	return &Services{
		Auth:      NewAuthService(repos.Employee, cfg.JWT, log),
		Employee:  NewEmployeeService(repos.Employee, log),
		Discuss:   NewDiscussService(repos.Channel, repos.Message, repos.Mention, cfg.Chat, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
