package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"food-catalog/internal/config"
	"food-catalog/internal/database"
	"food-catalog/internal/logger"
	"food-catalog/internal/media"
	"food-catalog/internal/server"
	"food-catalog/migrations"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// connectRedis returns nil when no Redis host is configured or it cannot be
// reached; the server then limits requests in process
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	addr := cfg.Addr()
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-process rate limiting", zap.String("addr", addr), zap.Error(err))
		client.Close()
		return nil
	}

	log.Info("Connected to Redis", zap.String("addr", addr))
	return client
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.Must(cfg.Server.Env)
	defer log.Sync()

	log.Info("Starting food catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Initialize database
	dbService, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Unable to connect to the database", zap.Error(err))
	}
	log.Info("Database connection has been established successfully",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
		zap.String("sslmode", cfg.Database.SSLMode()),
	)

	// Run migrations
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(dbService.DB(), migrations.FS, ".", log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		log.Info("Database migrations completed successfully")
	}

	store, err := media.Open(cfg.Media, cfg.Server.Port, log)
	if err != nil {
		log.Fatal("Failed to initialize media store", zap.Error(err))
	}
	log.Info("Media store ready", zap.String("driver", cfg.Media.Driver), zap.String("folder", cfg.Media.Folder))

	// Create server
	srv := server.NewServer(cfg, log, dbService, store, connectRedis(ctx, cfg.Redis, log))

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening",
		zap.String("addr", srv.Addr),
		zap.Strings("cors_origins", cfg.Frontend.Origins),
	)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
