package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales_crm/internal/config"
	"sales_crm/internal/handler"
	"sales_crm/internal/middleware"
	"sales_crm/internal/repository"
	"sales_crm/internal/service"
	"sales_crm/internal/ws"
	"sales_crm/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев и сервисов
	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, cfg, appLogger)

	// Realtime-шлюз чата
	hub := ws.NewHub(appLogger)
	limiter := ws.NewMessageLimiter(cfg.Chat.RateLimitWindow, cfg.Chat.RateLimitMax)
	gateway := ws.NewGateway(hub, services.Discuss, limiter, cfg.Chat, appLogger)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Handlers
	handlers := handler.NewHandlers(services, gateway, cfg, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg)

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		public := v1.Group("/auth")
		{
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
		}

		// Защищенные endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// Справочник сотрудников
			protected.GET("/employees", handlers.Employee.List)
			protected.GET("/employees/me", handlers.Employee.GetMe)

			// Каналы
			channels := protected.Group("/channels")
			{
				channels.GET("", handlers.Discuss.GetMyChannels)
				channels.GET("/browse", handlers.Discuss.BrowseChannels)
				channels.POST("", handlers.Discuss.CreateChannel)
				channels.GET("/:id", handlers.Discuss.GetChannel)
				channels.PATCH("/:id", handlers.Discuss.UpdateChannel)
				channels.DELETE("/:id", handlers.Discuss.DeleteChannel)
				channels.POST("/:id/join", handlers.Discuss.JoinChannel)
				channels.POST("/:id/leave", handlers.Discuss.LeaveChannel)
				channels.GET("/:id/members", handlers.Discuss.GetMembers)
				channels.POST("/:id/read", handlers.Discuss.MarkRead)
				channels.POST("/:id/messages", handlers.Discuss.SendMessage)
				channels.GET("/:id/messages", handlers.Discuss.GetMessages)
			}

			// Сообщения
			messages := protected.Group("/messages")
			{
				messages.PATCH("/:id", handlers.Discuss.EditMessage)
				messages.DELETE("/:id", handlers.Discuss.DeleteMessage)
				messages.GET("/:id/thread", handlers.Discuss.GetThread)
			}

			// Упоминания и поиск
			protected.GET("/mentions", handlers.Discuss.GetMyMentions)
			protected.GET("/search", handlers.Discuss.SearchMessages)
		}
	}

	// WebSocket endpoint для чата
	router.GET("/ws", handlers.WebSocket.Handle)

	return router
}
