package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabaylakad/backend/internal/api"
	"github.com/gabaylakad/backend/internal/config"
	"github.com/gabaylakad/backend/internal/mail"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/gabaylakad/backend/internal/repository/memory"
	"github.com/gabaylakad/backend/internal/repository/postgres"
	redisstore "github.com/gabaylakad/backend/internal/repository/redis"
	"github.com/gabaylakad/backend/internal/service"
	"github.com/gabaylakad/backend/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Session store: redis when configured, in-process otherwise.
	var sessions repository.SessionStore
	if cfg.RedisAddr != "" {
		store, err := redisstore.NewSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zap.L().Fatal("failed to connect to redis", zap.Error(err))
		}
		defer store.Close()
		sessions = store
	} else {
		zap.L().Warn("REDIS_ADDR not set, using in-process session store")
		sessions = memory.NewSessionStore()
	}

	// Initialize services
	mailer := mail.New(cfg)
	services := service.NewServices(repos, sessions, mailer, cfg)

	// Initialize WebSocket hub and cross-wire it with the location service
	hub := websocket.NewHub()
	hub.SetPublishFunc(services.Location.Record)
	services.Location.AttachBroadcaster(hub)
	go hub.Run()

	// Initialize router
	router := api.NewRouter(services, hub, repos)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zap.L().Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Fatal("server forced to shutdown", zap.Error(err))
	}

	hub.Stop()
	zap.L().Info("server stopped")
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
