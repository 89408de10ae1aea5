package handler

import (
	"github.com/gin-gonic/gin"
	"sales_crm/internal/config"
	"sales_crm/internal/service"
	"sales_crm/internal/ws"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Employee  *EmployeeHandler
	Discuss   *DiscussHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, gateway *ws.Gateway, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Auth:      NewAuthHandler(services.Auth, log),
		Employee:  NewEmployeeHandler(services.Employee, log),
		Discuss:   NewDiscussHandler(services.Discuss, log),
		WebSocket: NewWebSocketHandler(gateway, services.Auth, log),
	}
}

// respondError переводит ошибку сервиса в HTTP-статус
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
}
