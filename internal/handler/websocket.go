package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"sales_crm/internal/service"
	"sales_crm/internal/ws"
	"sales_crm/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	gateway     *ws.Gateway
	authService service.AuthService
	log         logger.Logger
}

func NewWebSocketHandler(gateway *ws.Gateway, authService service.AuthService, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		gateway:     gateway,
		authService: authService,
		log:         log,
	}
}

// Handle аутентифицирует handshake и отдает соединение шлюзу.
// Отказ происходит до апгрейда: без валидного токена обработчики
// событий даже не подключаются.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return
	}

	identity, err := h.authService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth invalid"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	h.gateway.HandleConnection(conn, *identity)
}

// bearerToken берет токен из заголовка Authorization или query-параметра
// (браузерный WebSocket API не умеет ставить заголовки)
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
