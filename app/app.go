// File: app/app.go
package app

import (
	"context"
	"go-campus-api/config"
	"go-campus-api/db"
	"go-campus-api/handler"
	"go-campus-api/logger"
	"go-campus-api/realtime"
	"go-campus-api/repository"
	"go-campus-api/router"
	"go-campus-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---
	// Every registry and service is an explicitly constructed instance
	// passed to its consumers; nothing is reachable as a global.

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	cache := service.NewCache(redisClient)
	authService := service.NewAuthService(userRepo, tokenRepo)
	activityTracker := service.NewActivityTracker(redisClient, authService, config.AppConfig.IdleTimeout())

	publisher := service.NewEventPublisher(config.AppConfig.Kafka.Brokers)
	defer publisher.Close()

	hub := realtime.NewHub(config.AppConfig.HeartbeatInterval())

	notificationService := service.NewNotificationService(notificationRepo, cache, publisher, hub)

	authHandler := handler.NewAuthHandler(authService, activityTracker)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	realtimeHandler := handler.NewRealtimeHandler(authService, hub)
	authMiddleware := handler.NewAuthMiddleware(authService, activityTracker)

	r := router.NewRouter(authHandler, notificationHandler, realtimeHandler, authMiddleware)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
