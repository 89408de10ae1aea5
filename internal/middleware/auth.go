package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"sales_crm/internal/domain"
	"sales_crm/internal/service"
	"sales_crm/pkg/logger"
)

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		identity, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("identity", identity)
		c.Next()
	}
}

// IdentityFromContext достает личность сотрудника, положенную RequireAuth
func IdentityFromContext(c *gin.Context) (*domain.Identity, bool) {
	value, exists := c.Get("identity")
	if !exists {
		return nil, false
	}
	identity, ok := value.(*domain.Identity)
	return identity, ok
}
