package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"sales_crm/internal/service"
	"sales_crm/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit ограничивает частоту запросов по IP клиента (для /auth/login)
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	limit := 100
	window := time.Minute

	return func(c *gin.Context) {
		key := "http:" + c.ClientIP()

		allowed, remaining, err := m.rateLimitService.Hit(c.Request.Context(), key, limit, window)
		if err != nil {
			m.log.Error("Rate limit check failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
